package library

import "errors"

// menuFunc handles one parsed choice and reports whether the menu should
// return to its parent.
type menuFunc func(choice int32) (done bool, err error)

type menu struct {
	title   string
	options []string
	// pauseOnBadInput adds a key wait after the "numerical value" message.
	pauseOnBadInput bool
	handle          menuFunc
}

// run shows the menu until handle reports done or an error occurs.
func (lm *LibraryManager) run(m menu) error {
	for {
		lm.printMenu(m.title, m.options)
		line, err := lm.console.ReadLine()
		if err != nil {
			return err
		}

		choice, ok := parseChoice(line)
		if !ok {
			lm.console.HandleInputError()
			if m.pauseOnBadInput {
				if err := lm.console.EnterToContinue(); err != nil {
					return err
				}
			}
			continue
		}

		done, err := m.handle(choice)
		if err != nil || done {
			return err
		}
	}
}

func (lm *LibraryManager) printMenu(title string, options []string) {
	lm.console.ClearScreen()
	lm.console.Println(title + "\n\n")
	for i, opt := range options {
		lm.console.Printf("%d. %s\n", i+1, opt)
	}
	lm.console.Println("Please enter a number to select:")
}

func (lm *LibraryManager) invalidChoice() (bool, error) {
	lm.console.Println("Invalid choice. Please try again.")
	return false, lm.console.EnterToContinue()
}

// MainMenu is the entry state. It returns nil after "Exit Program" and
// ErrInputClosed when the input ends first; any other error is an I/O fault.
func (lm *LibraryManager) MainMenu(pathFileUsers, pathFileBooks string) error {
	return lm.run(menu{
		title:   "Welcome To Personal Library System",
		options: []string{"Login", "Register", "Guest Mode", "Exit Program"},
		handle: func(choice int32) (bool, error) {
			switch choice {
			case 1:
				lm.console.ClearScreen()
				ok, err := lm.LoginUserMenu(pathFileUsers)
				if err != nil || !ok {
					return false, err
				}
				return false, lm.UserOperations(pathFileBooks)
			case 2:
				lm.console.ClearScreen()
				return false, lm.RegisterMenu(pathFileUsers)
			case 3:
				lm.console.ClearScreen()
				return false, lm.GuestOperation(pathFileBooks)
			case 4:
				lm.console.Println("Exit Program")
				return true, nil
			default:
				return lm.invalidChoice()
			}
		},
	})
}

// LoginUserMenu prompts for credentials and checks them.
func (lm *LibraryManager) LoginUserMenu(pathFileUsers string) (bool, error) {
	user, err := lm.promptUser()
	if err != nil {
		return false, err
	}
	return lm.LoginUser(user, pathFileUsers)
}

// RegisterMenu prompts for credentials and stores them.
func (lm *LibraryManager) RegisterMenu(pathFileUsers string) error {
	user, err := lm.promptUser()
	if err != nil {
		return err
	}
	_, err = lm.RegisterUser(user, pathFileUsers)
	return err
}

func (lm *LibraryManager) promptUser() (User, error) {
	lm.console.ClearScreen()
	var u User
	var err error
	if u.Email, err = lm.console.Prompt("Enter email: "); err != nil {
		return u, err
	}
	if u.Password, err = lm.console.PromptPassword("Enter password: "); err != nil {
		return u, err
	}
	return u, nil
}

// GuestOperation offers read-only access to the catalog.
func (lm *LibraryManager) GuestOperation(pathFileBooks string) error {
	return lm.run(menu{
		title:   "Guest Operations",
		options: []string{"View Catalog", "Return to Main Menu"},
		handle: func(choice int32) (bool, error) {
			switch choice {
			case 1:
				lm.console.ClearScreen()
				return false, lm.ViewCatalog(pathFileBooks)
			case 2:
				return true, nil
			default:
				return lm.invalidChoice()
			}
		},
	})
}

// ViewCatalog lists every book and waits for a key.
func (lm *LibraryManager) ViewCatalog(pathFileBooks string) error {
	lm.console.ClearScreen()
	if _, err := lm.WriteAllBooks(pathFileBooks); err != nil {
		return err
	}
	return lm.console.EnterToContinue()
}

// UserOperations is the logged-in hub.
func (lm *LibraryManager) UserOperations(pathFileBooks string) error {
	return lm.run(menu{
		title: "Welcome to User Operations",
		options: []string{
			"Book Cataloging",
			"Loan Management",
			"WishList Management",
			"Reading Tracker",
			"Return to Main Menu",
		},
		pauseOnBadInput: true,
		handle: func(choice int32) (bool, error) {
			switch choice {
			case 1:
				return false, lm.BookCataloging(pathFileBooks)
			case 2:
				return false, lm.LoanManagement(pathFileBooks)
			case 3:
				return false, lm.WishList(pathFileBooks)
			case 4:
				return false, lm.ReadingTracker(pathFileBooks)
			case 5:
				return true, nil
			default:
				return lm.invalidChoice()
			}
		},
	})
}

// BookCataloging edits the catalog.
func (lm *LibraryManager) BookCataloging(pathFileBooks string) error {
	return lm.run(menu{
		title: "Welcome to Book Operations",
		options: []string{
			"Add Book",
			"Delete Book",
			"Update Book",
			"View Catalog",
			"Return User Operations",
		},
		handle: func(choice int32) (bool, error) {
			switch choice {
			case 1:
				return false, lm.AddBookMenu(pathFileBooks)
			case 2:
				return false, lm.promptForBook(pathFileBooks, AllBooks, "Enter a number to delete book: ", lm.DeleteBook)
			case 3:
				return false, lm.UpdateBookMenu(pathFileBooks)
			case 4:
				return false, lm.ViewCatalog(pathFileBooks)
			case 5:
				return true, nil
			default:
				return lm.invalidChoice()
			}
		},
	})
}

// AddBookMenu asks for a name and appends the book.
func (lm *LibraryManager) AddBookMenu(pathFileBooks string) error {
	lm.console.ClearScreen()
	name, err := lm.console.Prompt("Enter a book name: ")
	if err != nil {
		return err
	}
	_, err = lm.AddBook(name, pathFileBooks)
	return err
}

// UpdateBookMenu asks for an id and a new name.
func (lm *LibraryManager) UpdateBookMenu(pathFileBooks string) error {
	lm.console.ClearScreen()
	if _, err := lm.WriteAllBooks(pathFileBooks); err != nil {
		return err
	}
	bookID, ok, err := lm.console.PromptInt("Enter a number to update book: ")
	if err != nil {
		return err
	}
	if !ok {
		lm.console.HandleInputError()
		return lm.console.EnterToContinue()
	}
	newName, err := lm.console.Prompt("Enter the new name for the book: ")
	if err != nil {
		return err
	}
	_, err = lm.UpdateBook(bookID, newName, pathFileBooks)
	return err
}

// LoanManagement borrows and gives back books.
func (lm *LibraryManager) LoanManagement(pathFileBooks string) error {
	return lm.run(menu{
		title: "Welcome to Loan Management",
		options: []string{
			"Give Book",
			"Borrow Book",
			"View Borrowed Books",
			"Return User Operations",
		},
		handle: func(choice int32) (bool, error) {
			switch choice {
			case 1:
				return false, lm.promptForBook(pathFileBooks, BorrowedBooks,
					"Enter the ID of the book you want to give back: ", lm.GiveBook)
			case 2:
				return false, lm.promptForBook(pathFileBooks, UnborrowedBooks,
					"Enter the ID of the book you want to borrow: ", lm.BorrowBook)
			case 3:
				return false, lm.viewListing(BorrowedBooks, pathFileBooks)
			case 4:
				return true, nil
			default:
				return lm.invalidChoice()
			}
		},
	})
}

// WishList adds books to and removes them from the wish list.
func (lm *LibraryManager) WishList(pathFileBooks string) error {
	return lm.run(menu{
		title: "Welcome to WishList Management",
		options: []string{
			"Add Book to WishList",
			"Remove Book from WishList",
			"View WishList",
			"View Books Not in WishList",
			"Return User Operations",
		},
		handle: func(choice int32) (bool, error) {
			switch choice {
			case 1:
				return false, lm.promptForBook(pathFileBooks, UnwishlistedBooks,
					"Enter the ID of the book you want to add to the wish list: ", lm.AddToWishlist)
			case 2:
				return false, lm.promptForBook(pathFileBooks, WishlistedBooks,
					"Enter the ID of the book you want to remove from the wish list: ", lm.RemoveFromWishlist)
			case 3:
				return false, lm.viewListing(WishlistedBooks, pathFileBooks)
			case 4:
				return false, lm.viewListing(UnwishlistedBooks, pathFileBooks)
			case 5:
				return true, nil
			default:
				return lm.invalidChoice()
			}
		},
	})
}

// ReadingTracker marks books as read or unread.
func (lm *LibraryManager) ReadingTracker(pathFileBooks string) error {
	return lm.run(menu{
		title: "Welcome to Reading Tracker",
		options: []string{
			"Mark Book as Read",
			"Mark Book as Unread",
			"View Read Books",
			"View Unread Books",
			"Return User Operations",
		},
		handle: func(choice int32) (bool, error) {
			switch choice {
			case 1:
				return false, lm.promptForBook(pathFileBooks, UnmarkedBooks,
					"Enter the ID of the book you want to mark as read: ", lm.MarkAsRead)
			case 2:
				return false, lm.promptForBook(pathFileBooks, MarkedBooks,
					"Enter the ID of the book you want to mark as unread: ", lm.MarkAsUnread)
			case 3:
				return false, lm.viewListing(MarkedBooks, pathFileBooks)
			case 4:
				return false, lm.viewListing(UnmarkedBooks, pathFileBooks)
			case 5:
				return true, nil
			default:
				return lm.invalidChoice()
			}
		},
	})
}

// promptForBook shows the candidates, reads an id and runs op on it.
func (lm *LibraryManager) promptForBook(pathFileBooks string, candidates Listing, prompt string,
	op func(int32, string) (bool, error)) error {
	lm.console.ClearScreen()
	if _, err := lm.WriteBooks(candidates, pathFileBooks); err != nil {
		return err
	}
	bookID, ok, err := lm.console.PromptInt(prompt)
	if err != nil {
		return err
	}
	if !ok {
		lm.console.HandleInputError()
		return lm.console.EnterToContinue()
	}
	_, err = op(bookID, pathFileBooks)
	return err
}

func (lm *LibraryManager) viewListing(l Listing, pathFileBooks string) error {
	lm.console.ClearScreen()
	if _, err := lm.WriteBooks(l, pathFileBooks); err != nil {
		return err
	}
	return lm.console.EnterToContinue()
}

// IsInputClosed reports whether err only means the user's input ran out.
func IsInputClosed(err error) bool {
	return errors.Is(err, ErrInputClosed)
}

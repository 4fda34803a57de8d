package library

import (
	"fmt"
	"iter"
	"slices"

	"personal-library/internal/logger"
)

// LibraryManager runs the auth and catalog operations against record files
// and reports every outcome on its console. Operations take file paths as
// arguments; the manager holds no path state.
//
// Expected failures (unknown id, wrong password) return false with a nil
// error. A non-nil error is an I/O fault and should end the session.
type LibraryManager struct {
	console      *Console
	log          *logger.Logger
	monotonicIDs bool
}

// Option configures a LibraryManager.
type Option func(*LibraryManager)

// WithLogger sets the diagnostic logger.
func WithLogger(l *logger.Logger) Option {
	return func(lm *LibraryManager) { lm.log = l.WithComponent("library") }
}

// WithMonotonicIDs makes new books take max(id)+1 instead of count+1, so an
// id freed by a delete is never handed out again.
func WithMonotonicIDs(enabled bool) Option {
	return func(lm *LibraryManager) { lm.monotonicIDs = enabled }
}

// NewLibraryManager builds a manager printing to console.
func NewLibraryManager(console *Console, opts ...Option) *LibraryManager {
	lm := &LibraryManager{console: console, log: logger.NewNop()}
	for _, opt := range opts {
		opt(lm)
	}
	return lm
}

// ------------------ Auth ------------------

// RegisterUser appends user without any duplicate check.
func (lm *LibraryManager) RegisterUser(user User, pathFileUsers string) (bool, error) {
	if err := AppendUser(pathFileUsers, user); err != nil {
		lm.log.LogFileOperation("append_user", pathFileUsers, 1, err)
		return false, err
	}
	lm.log.Infow("User registered", "email", user.Email)

	lm.console.Println("User registered successfully.")
	return true, lm.console.EnterToContinue()
}

// LoginUser succeeds when any stored user has exactly the same email and
// password. The first match wins.
func (lm *LibraryManager) LoginUser(user User, pathFileUsers string) (bool, error) {
	users, err := LoadUsers(pathFileUsers)
	if err != nil {
		lm.log.LogFileOperation("load_users", pathFileUsers, 0, err)
		return false, err
	}

	if slices.Contains(users, user) {
		lm.log.Infow("Login succeeded", "email", user.Email)
		lm.console.Println("Login successful.")
		return true, lm.console.EnterToContinue()
	}

	lm.log.Warnw("Login failed", "email", user.Email)
	lm.console.Println("Invalid email or password. Please try again.")
	return false, lm.console.EnterToContinue()
}

// ------------------ Book helpers ------------------

// GetNewID returns the id the next added book will receive: the current
// record count plus one. After a delete this can repeat an id still in
// use; WithMonotonicIDs switches to max(id)+1.
func (lm *LibraryManager) GetNewID(pathFileBooks string) (int32, error) {
	books, err := LoadBooks(pathFileBooks)
	if err != nil {
		return 0, err
	}
	return lm.nextID(books), nil
}

func (lm *LibraryManager) nextID(books []Book) int32 {
	if !lm.monotonicIDs {
		return int32(len(books)) + 1
	}
	var maxID int32
	for _, b := range books {
		maxID = max(maxID, b.ID)
	}
	return maxID + 1
}

// AddBook appends a new book with every flag cleared. It prints nothing.
func (lm *LibraryManager) AddBook(bookName, pathFileBooks string) (bool, error) {
	id, err := lm.GetNewID(pathFileBooks)
	if err != nil {
		lm.log.LogFileOperation("load_books", pathFileBooks, 0, err)
		return false, err
	}

	book := Book{ID: id, Name: bookName}
	if err := AppendBook(pathFileBooks, book); err != nil {
		lm.log.LogFileOperation("append_book", pathFileBooks, 1, err)
		return false, err
	}
	lm.log.Debugw("Book added", "id", id, "name", bookName)
	return true, nil
}

// DeleteBook rewrites the catalog without the book carrying bookID.
func (lm *LibraryManager) DeleteBook(bookID int32, pathFileBooks string) (bool, error) {
	books, err := lm.loadBooks(pathFileBooks)
	if err != nil {
		return false, err
	}

	kept := slices.DeleteFunc(slices.Clone(books), func(b Book) bool { return b.ID == bookID })
	if err := lm.rewriteBooks(pathFileBooks, kept); err != nil {
		return false, err
	}

	if len(kept) == len(books) {
		return lm.notFound()
	}
	lm.log.Debugw("Book deleted", "id", bookID)
	lm.console.Printf("Book with ID '%d' has been deleted successfully.\n", bookID)
	return true, lm.console.EnterToContinue()
}

// UpdateBook renames the book carrying bookID, leaving its id and flags.
// The success line quotes the new name where other messages quote the id.
func (lm *LibraryManager) UpdateBook(bookID int32, newBookName, pathFileBooks string) (bool, error) {
	found, err := lm.rewriteMatching(pathFileBooks,
		func(b Book) bool { return b.ID == bookID },
		func(b *Book) { b.Name = newBookName },
	)
	if err != nil {
		return false, err
	}
	if !found {
		return lm.notFound()
	}
	lm.log.Debugw("Book updated", "id", bookID, "name", newBookName)
	lm.console.Printf("Book with ID '%s' has been updated successfully.\n", newBookName)
	return true, lm.console.EnterToContinue()
}

// ------------------ Flag changes ------------------

// flagChange flips one flag on the book with a given id, but only while the
// book is in the from state.
type flagChange struct {
	name    string
	from    func(Book) bool
	apply   func(*Book)
	success string
}

var (
	borrowChange = flagChange{
		name:    "borrow",
		from:    func(b Book) bool { return !b.IsLoaned },
		apply:   func(b *Book) { b.IsLoaned = true },
		success: "Book with ID '%d' has been borrowed successfully.\n",
	}
	giveChange = flagChange{
		name:    "give",
		from:    func(b Book) bool { return b.IsLoaned },
		apply:   func(b *Book) { b.IsLoaned = false },
		success: "Book with ID '%d' returned successfully.\n",
	}
	wishlistAddChange = flagChange{
		name:    "wishlist_add",
		from:    func(b Book) bool { return !b.IsWishlist },
		apply:   func(b *Book) { b.IsWishlist = true },
		success: "Book with ID '%d' has been added to the wish list successfully.\n",
	}
	wishlistRemoveChange = flagChange{
		name:    "wishlist_remove",
		from:    func(b Book) bool { return b.IsWishlist },
		apply:   func(b *Book) { b.IsWishlist = false },
		success: "Book with ID '%d' has been removed from the wish list successfully.\n",
	}
	markChange = flagChange{
		name:    "mark",
		from:    func(b Book) bool { return !b.IsMarked },
		apply:   func(b *Book) { b.IsMarked = true },
		success: "Book with ID '%d' has been marked as read.\n",
	}
	unmarkChange = flagChange{
		name:    "unmark",
		from:    func(b Book) bool { return b.IsMarked },
		apply:   func(b *Book) { b.IsMarked = false },
		success: "Book with ID '%d' has been marked as unread.\n",
	}
)

// BorrowBook marks a book that is not loaned as loaned.
func (lm *LibraryManager) BorrowBook(bookID int32, pathFileBooks string) (bool, error) {
	return lm.changeFlag(borrowChange, bookID, pathFileBooks)
}

// GiveBook returns a loaned book.
func (lm *LibraryManager) GiveBook(bookID int32, pathFileBooks string) (bool, error) {
	return lm.changeFlag(giveChange, bookID, pathFileBooks)
}

// AddToWishlist puts a book that is not wishlisted on the wish list.
func (lm *LibraryManager) AddToWishlist(bookID int32, pathFileBooks string) (bool, error) {
	return lm.changeFlag(wishlistAddChange, bookID, pathFileBooks)
}

// RemoveFromWishlist takes a wishlisted book off the wish list.
func (lm *LibraryManager) RemoveFromWishlist(bookID int32, pathFileBooks string) (bool, error) {
	return lm.changeFlag(wishlistRemoveChange, bookID, pathFileBooks)
}

// MarkAsRead flags an unread book as read.
func (lm *LibraryManager) MarkAsRead(bookID int32, pathFileBooks string) (bool, error) {
	return lm.changeFlag(markChange, bookID, pathFileBooks)
}

// MarkAsUnread clears the read flag of a read book.
func (lm *LibraryManager) MarkAsUnread(bookID int32, pathFileBooks string) (bool, error) {
	return lm.changeFlag(unmarkChange, bookID, pathFileBooks)
}

func (lm *LibraryManager) changeFlag(c flagChange, bookID int32, pathFileBooks string) (bool, error) {
	found, err := lm.rewriteMatching(pathFileBooks,
		func(b Book) bool { return b.ID == bookID && c.from(b) },
		c.apply,
	)
	if err != nil {
		return false, err
	}
	if !found {
		return lm.notFound()
	}
	lm.log.Debugw("Book flag changed", "change", c.name, "id", bookID)
	lm.console.Printf(c.success, bookID)
	return true, lm.console.EnterToContinue()
}

// rewriteMatching applies mutate to every book accepted by match and writes
// the whole catalog back, changed or not.
func (lm *LibraryManager) rewriteMatching(pathFileBooks string, match func(Book) bool, mutate func(*Book)) (bool, error) {
	books, err := lm.loadBooks(pathFileBooks)
	if err != nil {
		return false, err
	}

	found := false
	for i := range books {
		if match(books[i]) {
			mutate(&books[i])
			found = true
		}
	}
	return found, lm.rewriteBooks(pathFileBooks, books)
}

func (lm *LibraryManager) notFound() (bool, error) {
	lm.console.Println("There is no book you want!")
	return false, lm.console.EnterToContinue()
}

func (lm *LibraryManager) loadBooks(path string) ([]Book, error) {
	books, err := LoadBooks(path)
	if err != nil {
		lm.log.LogFileOperation("load_books", path, 0, err)
		return nil, err
	}
	return books, nil
}

func (lm *LibraryManager) rewriteBooks(path string, books []Book) error {
	err := RewriteBooks(path, books)
	lm.log.LogFileOperation("rewrite_books", path, len(books), err)
	return err
}

// ------------------ Listings ------------------

// Listing selects books for display and names what to say when none match.
type Listing struct {
	Keep  func(Book) bool
	Empty string
	// Format receives id, name, read status and wishlist status.
	Format string
}

const filteredFormat = "%d. %s (%s : %s)\n"

var (
	AllBooks = Listing{
		Keep:   func(Book) bool { return true },
		Empty:  "There are no books.",
		Format: "%d. %s (%s: %s)\n",
	}
	UnborrowedBooks = Listing{
		Keep:   func(b Book) bool { return !b.IsLoaned },
		Empty:  "There are no books to borrow.",
		Format: filteredFormat,
	}
	BorrowedBooks = Listing{
		Keep:   func(b Book) bool { return b.IsLoaned },
		Empty:  "There are no books to give back.",
		Format: filteredFormat,
	}
	WishlistedBooks = Listing{
		Keep:   func(b Book) bool { return b.IsWishlist },
		Empty:  "You bought all the books on your wish list.",
		Format: filteredFormat,
	}
	UnwishlistedBooks = Listing{
		Keep:   func(b Book) bool { return !b.IsWishlist },
		Empty:  "All books are on the wish list.",
		Format: filteredFormat,
	}
	MarkedBooks = Listing{
		Keep:   func(b Book) bool { return b.IsMarked },
		Empty:  "There are no marked books.",
		Format: filteredFormat,
	}
	UnmarkedBooks = Listing{
		Keep:   func(b Book) bool { return !b.IsMarked },
		Empty:  "There are no unmarked books.",
		Format: filteredFormat,
	}
)

// Filter yields the books accepted by keep, in order. The sequence can be
// ranged over any number of times.
func Filter(books []Book, keep func(Book) bool) iter.Seq[Book] {
	return func(yield func(Book) bool) {
		for _, b := range books {
			if keep(b) && !yield(b) {
				return
			}
		}
	}
}

// WriteBooks prints every book selected by l and reports whether there was
// at least one.
func (lm *LibraryManager) WriteBooks(l Listing, pathFileBooks string) (bool, error) {
	books, err := lm.loadBooks(pathFileBooks)
	if err != nil {
		return false, err
	}

	isFound := false
	for b := range Filter(books, l.Keep) {
		isFound = true
		lm.console.Printf(l.Format, b.ID, b.Name, b.ReadStatus(), b.WishlistStatus())
	}
	if !isFound {
		lm.console.Println(l.Empty)
	}
	return isFound, nil
}

func (lm *LibraryManager) WriteAllBooks(path string) (bool, error) {
	return lm.WriteBooks(AllBooks, path)
}

func (lm *LibraryManager) WriteUnborrowedBooks(path string) (bool, error) {
	return lm.WriteBooks(UnborrowedBooks, path)
}

func (lm *LibraryManager) WriteBorrowedBooks(path string) (bool, error) {
	return lm.WriteBooks(BorrowedBooks, path)
}

func (lm *LibraryManager) WriteWishlistedBooks(path string) (bool, error) {
	return lm.WriteBooks(WishlistedBooks, path)
}

func (lm *LibraryManager) WriteUnwishlistedBooks(path string) (bool, error) {
	return lm.WriteBooks(UnwishlistedBooks, path)
}

func (lm *LibraryManager) WriteMarkedBooks(path string) (bool, error) {
	return lm.WriteBooks(MarkedBooks, path)
}

func (lm *LibraryManager) WriteUnmarkedBooks(path string) (bool, error) {
	return lm.WriteBooks(UnmarkedBooks, path)
}

// ------------------ Utilities ------------------

// PrettyBook formats a book the way the catalog view prints it, without
// the trailing newline.
func PrettyBook(b Book) string {
	return fmt.Sprintf("%d. %s (%s: %s)", b.ID, b.Name, b.ReadStatus(), b.WishlistStatus())
}

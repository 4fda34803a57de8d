package library

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pause = "Press any key to continue...\n"

func newManager(t *testing.T, input string, opts ...Option) (*LibraryManager, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	console := NewConsole(strings.NewReader(input), out, false)
	return NewLibraryManager(console, opts...), out
}

func loadBooks(t *testing.T, path string) []Book {
	t.Helper()
	books, err := LoadBooks(path)
	require.NoError(t, err)
	return books
}

func TestGetNewIDFollowsCount(t *testing.T) {
	mgr, out := newManager(t, "")
	_, booksPath := tempPaths(t)

	for i := int32(1); i <= 5; i++ {
		id, err := mgr.GetNewID(booksPath)
		require.NoError(t, err)
		assert.Equal(t, i, id)

		ok, err := mgr.AddBook("Book", booksPath)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	assert.Empty(t, out.String(), "adding a book prints nothing")

	books := loadBooks(t, booksPath)
	require.Len(t, books, 5)
	for i, b := range books {
		assert.Equal(t, int32(i+1), b.ID)
		assert.False(t, b.IsMarked || b.IsWishlist || b.IsLoaned)
	}
}

func TestCountBasedIDRepeatsAfterDelete(t *testing.T) {
	mgr, _ := newManager(t, "")
	_, booksPath := tempPaths(t)
	seedBooks(t, booksPath, fixtureBooks())

	_, err := mgr.DeleteBook(2, booksPath)
	require.NoError(t, err)
	_, err = mgr.AddBook("Book5", booksPath)
	require.NoError(t, err)

	books := loadBooks(t, booksPath)
	assert.Equal(t, int32(4), books[2].ID)
	assert.Equal(t, int32(4), books[3].ID, "count+1 hands out an id already in use")
}

func TestMonotonicIDsAfterDelete(t *testing.T) {
	mgr, _ := newManager(t, "", WithMonotonicIDs(true))
	_, booksPath := tempPaths(t)
	seedBooks(t, booksPath, fixtureBooks())

	_, err := mgr.DeleteBook(2, booksPath)
	require.NoError(t, err)
	_, err = mgr.AddBook("Book5", booksPath)
	require.NoError(t, err)

	books := loadBooks(t, booksPath)
	assert.Equal(t, int32(5), books[3].ID)
}

func TestDeleteBook(t *testing.T) {
	mgr, out := newManager(t, "")
	_, booksPath := tempPaths(t)
	seedBooks(t, booksPath, fixtureBooks())

	ok, err := mgr.DeleteBook(2, booksPath)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Book with ID '2' has been deleted successfully.\n"+pause, out.String())

	want := fixtureBooks()
	assert.Equal(t, []Book{want[0], want[2], want[3]}, loadBooks(t, booksPath))

	out.Reset()
	ok, err = mgr.DeleteBook(2, booksPath)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "There is no book you want!\n"+pause, out.String())
}

func TestDeleteFromMissingFile(t *testing.T) {
	mgr, out := newManager(t, "")
	_, booksPath := tempPaths(t)

	for range 2 {
		ok, err := mgr.DeleteBook(1, booksPath)
		require.NoError(t, err)
		assert.False(t, ok)
	}
	assert.Equal(t, strings.Repeat("There is no book you want!\n"+pause, 2), out.String())
}

func TestUpdateBook(t *testing.T) {
	mgr, out := newManager(t, "")
	_, booksPath := tempPaths(t)
	seedBooks(t, booksPath, fixtureBooks())

	ok, err := mgr.UpdateBook(2, "UpdatedBook", booksPath)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Book with ID 'UpdatedBook' has been updated successfully.\n"+pause, out.String())

	books := loadBooks(t, booksPath)
	want := fixtureBooks()
	want[1].Name = "UpdatedBook"
	assert.Equal(t, want, books)

	out.Reset()
	ok, err = mgr.UpdateBook(99, "Nope", booksPath)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "There is no book you want!\n"+pause, out.String())
	assert.Equal(t, want, loadBooks(t, booksPath))
}

func TestLoanCycle(t *testing.T) {
	mgr, out := newManager(t, "")
	_, booksPath := tempPaths(t)
	seedBooks(t, booksPath, fixtureBooks())

	ok, err := mgr.BorrowBook(1, booksPath)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Book with ID '1' has been borrowed successfully.\n"+pause, out.String())
	assert.True(t, loadBooks(t, booksPath)[0].IsLoaned)

	out.Reset()
	ok, err = mgr.BorrowBook(1, booksPath)
	require.NoError(t, err)
	assert.False(t, ok, "borrowing a loaned book fails")
	assert.Equal(t, "There is no book you want!\n"+pause, out.String())

	out.Reset()
	ok, err = mgr.GiveBook(1, booksPath)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Book with ID '1' returned successfully.\n"+pause, out.String())

	out.Reset()
	ok, err = mgr.GiveBook(1, booksPath)
	require.NoError(t, err)
	assert.False(t, ok, "returning a book that is not loaned fails")

	assert.Equal(t, fixtureBooks(), loadBooks(t, booksPath))
}

func TestFlagChangesLeaveOtherFieldsAlone(t *testing.T) {
	tests := []struct {
		name string
		op   func(*LibraryManager, int32, string) (bool, error)
		id   int32
		ok   bool
		edit func(*Book)
		msg  string
	}{
		{
			name: "wishlist add",
			op:   (*LibraryManager).AddToWishlist,
			id:   4,
			ok:   true,
			edit: func(b *Book) { b.IsWishlist = true },
			msg:  "Book with ID '4' has been added to the wish list successfully.\n",
		},
		{
			name: "wishlist add already wishlisted",
			op:   (*LibraryManager).AddToWishlist,
			id:   3,
			msg:  "There is no book you want!\n",
		},
		{
			name: "wishlist remove",
			op:   (*LibraryManager).RemoveFromWishlist,
			id:   2,
			ok:   true,
			edit: func(b *Book) { b.IsWishlist = false },
			msg:  "Book with ID '2' has been removed from the wish list successfully.\n",
		},
		{
			name: "mark as read",
			op:   (*LibraryManager).MarkAsRead,
			id:   1,
			ok:   true,
			edit: func(b *Book) { b.IsMarked = true },
			msg:  "Book with ID '1' has been marked as read.\n",
		},
		{
			name: "mark as unread",
			op:   (*LibraryManager).MarkAsUnread,
			id:   3,
			ok:   true,
			edit: func(b *Book) { b.IsMarked = false },
			msg:  "Book with ID '3' has been marked as unread.\n",
		},
		{
			name: "unknown id",
			op:   (*LibraryManager).MarkAsUnread,
			id:   42,
			msg:  "There is no book you want!\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mgr, out := newManager(t, "")
			_, booksPath := tempPaths(t)
			seedBooks(t, booksPath, fixtureBooks())

			ok, err := tt.op(mgr, tt.id, booksPath)
			require.NoError(t, err)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.msg+pause, out.String())

			want := fixtureBooks()
			if tt.edit != nil {
				tt.edit(&want[tt.id-1])
			}
			assert.Equal(t, want, loadBooks(t, booksPath))
		})
	}
}

func TestWriteUnborrowedBooks(t *testing.T) {
	mgr, out := newManager(t, "")
	_, booksPath := tempPaths(t)
	seedBooks(t, booksPath, fixtureBooks())

	found, err := mgr.WriteUnborrowedBooks(booksPath)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "1. Book1 (Unread : UnWishlisted)\n3. Book3 (Read : Wishlist)\n", out.String())
}

func TestListingsOnEmptyStore(t *testing.T) {
	tests := []struct {
		listing Listing
		empty   string
	}{
		{AllBooks, "There are no books.\n"},
		{UnborrowedBooks, "There are no books to borrow.\n"},
		{BorrowedBooks, "There are no books to give back.\n"},
		{WishlistedBooks, "You bought all the books on your wish list.\n"},
		{UnwishlistedBooks, "All books are on the wish list.\n"},
		{MarkedBooks, "There are no marked books.\n"},
		{UnmarkedBooks, "There are no unmarked books.\n"},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSuffix(tt.empty, "\n"), func(t *testing.T) {
			mgr, out := newManager(t, "")
			_, booksPath := tempPaths(t)

			found, err := mgr.WriteBooks(tt.listing, booksPath)
			require.NoError(t, err)
			assert.False(t, found)
			assert.Equal(t, tt.empty, out.String())
		})
	}
}

func TestListingsOnFixture(t *testing.T) {
	tests := []struct {
		name  string
		write func(*LibraryManager, string) (bool, error)
		want  string
	}{
		{"all", (*LibraryManager).WriteAllBooks,
			"1. Book1 (Unread: UnWishlisted)\n2. Book2 (Read: Wishlist)\n3. Book3 (Read: Wishlist)\n4. Book4 (Unread: UnWishlisted)\n"},
		{"borrowed", (*LibraryManager).WriteBorrowedBooks,
			"2. Book2 (Read : Wishlist)\n4. Book4 (Unread : UnWishlisted)\n"},
		{"wishlisted", (*LibraryManager).WriteWishlistedBooks,
			"2. Book2 (Read : Wishlist)\n3. Book3 (Read : Wishlist)\n"},
		{"unwishlisted", (*LibraryManager).WriteUnwishlistedBooks,
			"1. Book1 (Unread : UnWishlisted)\n4. Book4 (Unread : UnWishlisted)\n"},
		{"marked", (*LibraryManager).WriteMarkedBooks,
			"2. Book2 (Read : Wishlist)\n3. Book3 (Read : Wishlist)\n"},
		{"unmarked", (*LibraryManager).WriteUnmarkedBooks,
			"1. Book1 (Unread : UnWishlisted)\n4. Book4 (Unread : UnWishlisted)\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mgr, out := newManager(t, "")
			_, booksPath := tempPaths(t)
			seedBooks(t, booksPath, fixtureBooks())

			found, err := tt.write(mgr, booksPath)
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, tt.want, out.String())
		})
	}
}

func TestFilterIsRestartable(t *testing.T) {
	seq := Filter(fixtureBooks(), func(b Book) bool { return b.IsLoaned })

	var first, second []int32
	for b := range seq {
		first = append(first, b.ID)
	}
	for b := range seq {
		second = append(second, b.ID)
	}
	assert.Equal(t, []int32{2, 4}, first)
	assert.Equal(t, first, second)

	for b := range seq {
		assert.Equal(t, int32(2), b.ID)
		break
	}
}

func TestRegisterAndLogin(t *testing.T) {
	mgr, out := newManager(t, "")
	usersPath, _ := tempPaths(t)

	ok, err := mgr.LoginUser(User{Email: "a@b.c", Password: "pw"}, usersPath)
	require.NoError(t, err)
	assert.False(t, ok, "no users file")
	assert.Equal(t, "Invalid email or password. Please try again.\n"+pause, out.String())

	out.Reset()
	ok, err = mgr.RegisterUser(User{Email: "a@b.c", Password: "pw"}, usersPath)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "User registered successfully.\n"+pause, out.String())

	// Same email again is accepted and both records are kept.
	ok, err = mgr.RegisterUser(User{Email: "a@b.c", Password: "other"}, usersPath)
	require.NoError(t, err)
	assert.True(t, ok)
	users, err := LoadUsers(usersPath)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	tests := []struct {
		user User
		ok   bool
	}{
		{User{Email: "a@b.c", Password: "pw"}, true},
		{User{Email: "a@b.c", Password: "other"}, true},
		{User{Email: "a@b.c", Password: "PW"}, false},
		{User{Email: "A@b.c", Password: "pw"}, false},
		{User{Email: "", Password: ""}, false},
	}
	for _, tt := range tests {
		out.Reset()
		ok, err := mgr.LoginUser(tt.user, usersPath)
		require.NoError(t, err)
		assert.Equal(t, tt.ok, ok, "%+v", tt.user)
		if tt.ok {
			assert.Equal(t, "Login successful.\n"+pause, out.String())
		} else {
			assert.Equal(t, "Invalid email or password. Please try again.\n"+pause, out.String())
		}
	}
}

func TestEmptyUsersFileRejectsLogin(t *testing.T) {
	mgr, _ := newManager(t, "")
	usersPath, _ := tempPaths(t)
	require.NoError(t, os.WriteFile(usersPath, nil, 0o644))

	ok, err := mgr.LoginUser(User{}, usersPath)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIOFailurePropagates(t *testing.T) {
	mgr, _ := newManager(t, "")
	dir := t.TempDir()

	_, err := mgr.DeleteBook(1, dir)
	assert.Error(t, err)
	_, err = mgr.AddBook("x", dir)
	assert.Error(t, err)
	_, err = mgr.RegisterUser(User{Email: "a"}, dir)
	assert.Error(t, err)
}

func TestPrettyBook(t *testing.T) {
	assert.Equal(t, "2. Book2 (Read: Wishlist)", PrettyBook(fixtureBooks()[1]))
}

package library

// Book is one catalog entry. The three flags are independent; nothing stops
// a book from being loaned and wishlisted at the same time.
type Book struct {
	ID         int32  `json:"id"`
	Name       string `json:"name"`
	IsMarked   bool   `json:"is_marked"`
	IsWishlist bool   `json:"is_wishlist"`
	IsLoaned   bool   `json:"is_loaned"`
}

// User is a registered account. Passwords are stored as entered.
type User struct {
	Email    string `json:"email"`
	Password string `json:"-"` // Don't serialize password
}

// ReadStatus is the label used in listings for the marked flag.
func (b Book) ReadStatus() string {
	if b.IsMarked {
		return "Read"
	}
	return "Unread"
}

// WishlistStatus is the label used in listings for the wishlist flag.
func (b Book) WishlistStatus() string {
	if b.IsWishlist {
		return "Wishlist"
	}
	return "UnWishlisted"
}

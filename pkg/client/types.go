package client

import "time"

// User is a user as returned by the API. Email and Role are only set for the caller's own account.
type User struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Surname   string    `json:"surname"`
	Nick      string    `json:"nick"`
	Bio       string    `json:"bio"`
	Image     string    `json:"image"`
	Email     string    `json:"email,omitempty"`
	Role      string    `json:"role,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ListedUser is a row of the user listing.
type ListedUser struct {
	User
	Following bool `json:"following"`
	Follower  bool `json:"follower"`
}

// FollowState is the relationship between the caller and another user.
type FollowState struct {
	Following bool `json:"following"`
	Follower  bool `json:"follower"`
}

// FollowSets are the ids the caller follows and the ids following the caller.
type FollowSets struct {
	Following []uint `json:"following"`
	Followers []uint `json:"followers"`
}

// Counters are a user's totals.
type Counters struct {
	UserID       uint  `json:"userId"`
	Following    int64 `json:"following"`
	Followed     int64 `json:"followed"`
	Publications int64 `json:"publications"`
}

// Follow is one follow edge.
type Follow struct {
	UserID     uint      `json:"user_id"`
	FollowedID uint      `json:"followed_id"`
	CreatedAt  time.Time `json:"created_at"`
	User       *User     `json:"user,omitempty"`
	Followed   *User     `json:"followed,omitempty"`
}

// Publication is one post.
type Publication struct {
	ID        uint      `json:"id"`
	Text      string    `json:"text"`
	File      string    `json:"file,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	User      *User     `json:"user,omitempty"`
}

// Page is one page of a listing.
type Page[T any] struct {
	Items []T
	Total int64
	Pages int
	Page  int
}

// Profile is a user's profile as seen by the caller.
type Profile struct {
	User         User
	FollowInfo   FollowState
	Counters     Counters
	Publications Page[Publication]
}

// IFollow reports whether the caller follows the profile's user.
func (p *Profile) IFollow() bool { return p.FollowInfo.Following }

// Registration is the body of a registration request.
type Registration struct {
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Nick     string `json:"nick"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// region --- wire shapes ---

type publicationPage struct {
	Publications []Publication `json:"publications"`
	Total        int64         `json:"total"`
	Pages        int           `json:"pages"`
	Page         int           `json:"page"`
}

func (p publicationPage) toPage() Page[Publication] {
	return Page[Publication]{Items: p.Publications, Total: p.Total, Pages: p.Pages, Page: p.Page}
}

type profileBody struct {
	User         User            `json:"user"`
	FollowInfo   FollowState     `json:"followInfo"`
	Counters     Counters        `json:"counters"`
	Publications publicationPage `json:"publications"`
}

type followListBody struct {
	Result         []Follow   `json:"result"`
	Total          int64      `json:"total"`
	Pages          int        `json:"pages"`
	Page           int        `json:"page"`
	UserFollowInfo FollowSets `json:"user_follow_info"`
}

type userListBody struct {
	Users []ListedUser `json:"users"`
	Total int64        `json:"total"`
	Pages int          `json:"pages"`
	Page  int          `json:"page"`
}

// endregion

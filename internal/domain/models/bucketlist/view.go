package bucketlist

// ItemView is an Item as rendered for one actor: comments in display order
// plus the capabilities the actor holds over it.
type ItemView struct {
	Item
	Comments       []CommentView `json:"comments"`
	CanEdit        bool          `json:"can_edit"`
	CanDelete      bool          `json:"can_delete"`
	CanManagePhoto bool          `json:"can_manage_photo"`
}

// CommentView is a Comment as rendered for one actor.
type CommentView struct {
	Comment
	CanEdit bool `json:"can_edit"`
	// Empty flags a comment left with neither text nor photo after its photo was detached.
	Empty bool `json:"empty"`
}

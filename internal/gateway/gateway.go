package gateway

// Update is one inbound user event, normalized for the dialog layer.
// Photo holds the downloaded bytes of the largest photo variant, if any.
type Update struct {
	ID     int64
	UserID int64
	ChatID int64
	Text   string
	Photo  []byte
}

// Message is one outbound message. An empty Keyboard leaves the user's
// current reply keyboard in place.
type Message struct {
	ChatID   int64
	Text     string
	Keyboard [][]string
	Photo    []byte
}

package presence

type NoticeKind string

const (
	NoticeWelcome    NoticeKind = "welcome"
	NoticeChat       NoticeKind = "chat"
	NoticeSystem     NoticeKind = "system"
	NoticeMemberList NoticeKind = "member_list"
	NoticeRoomList   NoticeKind = "room_list"
	NoticeActivity   NoticeKind = "activity"
)

// Notice is one outbound notification. Which fields are set depends on Kind:
// welcome, chat and system use Name/Text/Time, member lists use Room/Members,
// room lists use Rooms and activity uses Name.
type Notice struct {
	Kind    NoticeKind
	Name    string
	Text    string
	Time    string
	Room    string
	Members []Participant
	Rooms   []string
}

// Deliverer hands a notice to a single connection. Implementations must not
// block; a failed delivery is the deliverer's concern and must not affect
// other recipients.
type Deliverer interface {
	Deliver(connectionID string, n Notice)
}

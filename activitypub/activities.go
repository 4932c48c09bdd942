package activitypub

// CreateNoteActivity wraps a NoteObject in a Create.
type CreateNoteActivity struct {
	Context   interface{} `json:"@context"`
	Type      string      `json:"type"`
	Id        string      `json:"id"`
	Actor     string      `json:"actor"`
	Published string      `json:"published"`
	To        []string    `json:"to"`
	Cc        []string    `json:"cc"`
	Object    *NoteObject `json:"object"`
}

// FollowActivity asks the object actor to let the actor follow them.
type FollowActivity struct {
	Context interface{} `json:"@context"`
	Type    string      `json:"type"`
	Id      string      `json:"id"`
	Actor   string      `json:"actor"`
	Object  string      `json:"object"`
}

// AcceptFollowActivity confirms a Follow; the original activity is
// embedded as the object.
type AcceptFollowActivity struct {
	Context interface{}     `json:"@context"`
	Type    string          `json:"type"`
	Actor   string          `json:"actor"`
	Object  *FollowActivity `json:"object"`
}

// InboundActivity is the minimal envelope the inbox needs to route an
// incoming payload: object may be a bare URI or an embedded object.
type InboundActivity struct {
	Context interface{} `json:"@context"`
	Id      string      `json:"id"`
	Type    string      `json:"type"`
	Actor   string      `json:"actor"`
	Object  interface{} `json:"object"`
}

// InboundCreate is the shape of an incoming Create carrying a Note.
type InboundCreate struct {
	Id     string     `json:"id"`
	Type   string     `json:"type"`
	Actor  string     `json:"actor"`
	Object NoteObject `json:"object"`
}

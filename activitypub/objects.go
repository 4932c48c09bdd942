package activitypub

// Typed ActivityStreams objects. One struct per kind, with the
// serialization fixed by json tags; no field-presence guessing on
// loosely typed maps.

// NoteObject is the ActivityStreams representation of a bookmark.
type NoteObject struct {
	Type         string           `json:"type"`
	Id           string           `json:"id"`
	Published    string           `json:"published"`
	Url          string           `json:"url"`
	AttributedTo string           `json:"attributedTo"`
	AtomUri      string           `json:"atomUri,omitempty"`
	Content      string           `json:"content"`
	To           []string         `json:"to"`
	Cc           []string         `json:"cc"`
	Sensitive    bool             `json:"sensitive"`
	Attachment   []DocumentObject `json:"attachment"`
	Tags         []HashtagObject  `json:"tags"`
}

// DocumentObject is a file attached to a Note (cover image, archive).
type DocumentObject struct {
	Type      string `json:"type"`
	Url       string `json:"url"`
	MediaType string `json:"mediaType"`
	Name      string `json:"name"`
}

// HashtagObject references a tag permalink.
type HashtagObject struct {
	Type string `json:"type"`
	Href string `json:"href"`
	Name string `json:"name"`
}

// PersonActor is the actor profile document served for local users and
// parsed from remote servers.
type PersonActor struct {
	Context           interface{}           `json:"@context,omitempty"`
	Id                string                `json:"id"`
	Type              string                `json:"type"`
	Name              string                `json:"name"`
	PreferredUsername string                `json:"preferredUsername"`
	Url               string                `json:"url,omitempty"`
	Published         string                `json:"published,omitempty"`
	Inbox             string                `json:"inbox"`
	Outbox            string                `json:"outbox"`
	Following         string                `json:"following,omitempty"`
	Followers         string                `json:"followers,omitempty"`
	PublicKey         PersonActorPublicKey  `json:"publicKey"`
	Endpoints         *PersonActorEndpoints `json:"endpoints,omitempty"`
}

type PersonActorPublicKey struct {
	Id           string `json:"id"`
	Owner        string `json:"owner"`
	PublicKeyPem string `json:"publicKeyPem"`
}

type PersonActorEndpoints struct {
	SharedInbox string `json:"sharedInbox"`
}

// WebFinger is the JRD discovery document.
type WebFinger struct {
	Subject string          `json:"subject"`
	Aliases []string        `json:"aliases"`
	Links   []WebFingerLink `json:"links"`
}

type WebFingerLink struct {
	Rel  string `json:"rel"`
	Type string `json:"type"`
	Href string `json:"href"`
}

// Collection is the stub served for following/followers/outbox. A
// structurally valid empty collection keeps crawlers happy until real
// pagination exists.
type Collection struct {
	Context interface{}    `json:"@context,omitempty"`
	Id      string         `json:"id"`
	Type    string         `json:"type"`
	First   CollectionPage `json:"first"`
}

type CollectionPage struct {
	Type   string        `json:"type"`
	Next   string        `json:"next,omitempty"`
	PartOf string        `json:"partOf"`
	Items  []interface{} `json:"items"`
}

// EmptyCollection builds the minimal protocol-compliant collection for
// the given collection id.
func EmptyCollection(id string) *Collection {
	return &Collection{
		Context: ContextURL,
		Id:      id,
		Type:    "Collection",
		First: CollectionPage{
			Type:   "CollectionPage",
			PartOf: id,
			Items:  []interface{}{},
		},
	}
}

package activitypub

// ActivityStreams namespace and addressing constants.
const (
	ContextURL = "https://www.w3.org/ns/activitystreams"
	PublicURL  = "https://www.w3.org/ns/activitystreams#Public"

	ContentTypeActivity = "application/activity+json"
	ContentTypeJrd      = "application/jrd+json; charset=utf-8"
)

// ExtendedContext is the @context block emitted on Create/Note
// payloads. The extension object remaps the ostatus, atomUri, sensitive
// and toot-prefixed terms plus Hashtag exactly the way Mastodon does;
// existing Fediverse servers expect this block verbatim.
func ExtendedContext() []interface{} {
	return []interface{}{
		ContextURL,
		map[string]interface{}{
			"ostatus":          "http://ostatus.org#",
			"atomUri":          "ostatus:atomUri",
			"inReplyToAtomUri": "ostatus:inReplyToAtomUri",
			"conversation":     "ostatus:conversation",
			"sensitive":        "as:sensitive",
			"toot":             "http://joinmastodon.org/ns#",
			"votersCount":      "toot:votersCount",
			"blurhash":         "toot:blurhash",
			"focalPoint": map[string]interface{}{
				"@container": "@list",
				"@id":        "toot:focalPoint",
			},
			"Hashtag": "as:Hashtag",
		},
	}
}

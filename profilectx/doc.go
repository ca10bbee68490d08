// Package profilectx assembles the creator context blocks that prompt
// assembly embeds verbatim.
//
// A Builder runs every request through the same pipeline: the AccessGate
// resolves which user's data the caller may read, the profile context cache is
// consulted, and on a miss the profile store is read once and the row
// rendered. Failures never reach the caller. Each stage reports a typed
// Outcome and only Outcome.Value collapses a failure into one of the two
// fallback strings, which are cached like real values so a missing row does
// not hit the store again until the entry expires.
//
//	b, err := profilectx.NewBuilder(auth.ContextSessions{}, store, c,
//		profilectx.WithMiddleware(mw))
//	text := b.BuildCreatorProfileContext(ctx, "")
package profilectx

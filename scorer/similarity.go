package scorer

import (
	"context"
	"log/slog"
)

// SemanticSimilarity returns the cosine similarity of the embeddings of text
// and target, clamped to [0,1] and rounded to 4 decimals. It returns 0 when the
// engine is missing, either string is empty, or the engine fails in any way.
func SemanticSimilarity(ctx context.Context, text, target string, engine Engine) (sim float64) {
	if engine == nil || text == "" || target == "" {
		return 0
	}
	defer func() {
		if r := recover(); r != nil {
			slog.DebugContext(ctx, "similarity: engine panicked", "panic", r)
			sim = 0
		}
	}()
	a, err := engine.EmbedText(ctx, text)
	if err != nil {
		slog.DebugContext(ctx, "similarity: embed transcript failed", "error", err)
		return 0
	}
	b, err := engine.EmbedText(ctx, target)
	if err != nil {
		slog.DebugContext(ctx, "similarity: embed target failed", "error", err)
		return 0
	}
	return roundTo(clamp01(cosineSimilarity(a, b)), 4)
}

// Package recommend asks an OpenAI-compatible model for an architecture
// recommendation and turns its free-form reply into a domain.Recommendation.
//
// The model is asked for JSON but replies are not trusted: code fences, prose
// around the object and trailing commas are tolerated, the result is checked
// against a JSON Schema, and compliance labels are kept verbatim for the
// compliance resolver to reconcile. A call is attempted once; every failure is
// reported as domain.ErrRecommendationFailed so callers can show a single
// retry message.
package recommend

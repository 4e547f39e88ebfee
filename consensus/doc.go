// Package consensus implements the longest-valid-chain rule.
//
// Peer chains are fetched through a ChainFetcher supplied by the transport
// layer. Every fetch is bounded by a per-peer timeout and reported as a
// FetchResult, so an unreachable or misbehaving peer only removes its own
// candidate from consideration. Candidate chains are untrusted: each one is
// re-validated with blockchain.ValidateChain before it can be adopted.
//
// Among several peers offering valid chains of the same, greatest length the
// first one in iteration order is kept, because a later chain must be strictly
// longer to displace it. Peer order carries no causal meaning, so which of two
// equally long chains wins is unspecified.
package consensus

package agents

// PeerGraph maps each analyst identifier to the set of other analysts whose
// output is relevant to it. The graph is directed and not necessarily
// symmetric: the macro analyst may care about central bank policy without
// the reverse holding.
type PeerGraph map[string][]string

// Peers returns the peer identifiers for id. Analysts absent from the graph
// have no peers and skip the refinement stage entirely.
func (g PeerGraph) Peers(id string) []string {
	return g[id]
}

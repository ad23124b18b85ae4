package models

// HubNodeID is the CurrentNodeID value while the player is on the map.
const HubNodeID = "HUB"

// HubConfigNodeID holds the map configuration. It never takes part in progress.
const HubConfigNodeID = "HUB_CONFIG"

// GameState is the whole progress of one player.
//
// An empty CurrentNodeID means the game has not started yet.
type GameState struct {
	CurrentNodeID string `json:"currentNodeId"`
	Nodes         []Node `json:"nodes"`
	Score         int    `json:"score"`
	DevMode       bool   `json:"devMode"`
}

// Clone returns a deep copy of the state.
func (s GameState) Clone() GameState {
	out := s
	out.Nodes = CloneNodes(s.Nodes)
	return out
}

// Node returns the node with id.
func (s GameState) Node(id string) (Node, bool) {
	if i := FindNode(s.Nodes, id); i >= 0 {
		return s.Nodes[i], true
	}
	return Node{}, false
}

// Intro returns the single INTRO node.
func (s GameState) Intro() (Node, bool) {
	for _, n := range s.Nodes {
		if n.Type == NodeTypeIntro {
			return n, true
		}
	}
	return Node{}, false
}

// WithNode returns a copy of the state where the node with the same id is replaced by n.
func (s GameState) WithNode(n Node) GameState {
	out := s
	out.Nodes = make([]Node, len(s.Nodes))
	copy(out.Nodes, s.Nodes)
	if i := FindNode(out.Nodes, n.ID); i >= 0 {
		out.Nodes[i] = n
	}
	return out
}

// Package campaign holds the progress rules of the node list: unlocking, routing after completion, and
// the save document that carries progress and customised assets across sessions.
package campaign

import (
	"slices"

	"github.com/WingsGames/Neve-Or/internal/models"
)

// FreshState is the state of a new player: only the first playable node is open.
func FreshState(nodes []models.Node) models.GameState {
	out := models.CloneNodes(nodes)
	first := true
	for i := range out {
		out[i].IsCompleted = false
		if !out[i].Type.Playable() {
			out[i].IsLocked = false
			continue
		}
		out[i].IsLocked = !first
		first = false
	}
	return models.GameState{Nodes: out}
}

type Outcome struct {
	Nodes []models.Node
	// Unlocked is the id of the node this completion opened, empty when nothing changed.
	Unlocked    string
	Destination string
}

// Complete marks the node completed and unlocks its successor in list order. The input is not modified.
func Complete(nodes []models.Node, id string) Outcome {
	out := slices.Clone(nodes)
	i := models.FindNode(out, id)
	if i < 0 {
		return Outcome{Nodes: out, Destination: models.HubNodeID}
	}
	out[i].IsCompleted = true
	outcome := Outcome{Nodes: out, Destination: Destination(out[i])}
	if i+1 < len(out) && out[i+1].IsLocked {
		out[i+1].IsLocked = false
		outcome.Unlocked = out[i+1].ID
	}
	return outcome
}

// Destination is where the player goes after completing node: its jump target or the hub.
func Destination(node models.Node) string {
	if node.JumpTo != "" {
		return node.JumpTo
	}
	return models.HubNodeID
}

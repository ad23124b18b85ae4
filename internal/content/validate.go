package content

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/WingsGames/Neve-Or/internal/errors"
	"github.com/WingsGames/Neve-Or/internal/models"
)

// Validate checks the structural rules the engine relies on and reports every violation at once.
func Validate(nodes []models.Node) error {
	var (
		problems []error
		intros   int
		ids      = make(map[string]bool, len(nodes))
	)
	fail := func(nodeID, msg string) {
		problems = append(problems, errors.Wrap(ErrInvalidContent, msg, slog.String("nodeID", nodeID)))
	}

	for _, n := range nodes {
		if n.ID == "" {
			fail(n.ID, "node without id")
			continue
		}
		if n.ID == models.HubNodeID {
			fail(n.ID, "node id is reserved for the hub screen")
		}
		if ids[n.ID] {
			fail(n.ID, "duplicate node id")
		}
		ids[n.ID] = true

		switch n.Type {
		case models.NodeTypeIntro:
			intros++
		case models.NodeTypeHub, models.NodeTypeScenario, models.NodeTypeQuiz:
		default:
			fail(n.ID, fmt.Sprintf("unknown node type %q", n.Type))
		}

		optionIDs := map[string]bool{}
		for _, o := range append(append([]models.DecisionOption(nil), n.Data.Options...), n.Data.SecondaryOptions...) {
			if optionIDs[o.ID] {
				fail(n.ID, fmt.Sprintf("duplicate option id %q", o.ID))
			}
			optionIDs[o.ID] = true
		}

		if msg := validateInteraction(n.Data); msg != "" {
			fail(n.ID, msg)
		}
	}

	if intros != 1 {
		problems = append(problems, errors.Wrap(ErrInvalidContent, "expected exactly one intro node",
			slog.Int("intros", intros)))
	}
	for _, n := range nodes {
		if n.JumpTo != "" && !ids[n.JumpTo] {
			fail(n.ID, fmt.Sprintf("jumpTo references unknown node %q", n.JumpTo))
		}
	}
	return errors.Join(problems...)
}

func validateInteraction(data models.NodeContent) string {
	switch it := data.Interaction.(type) {
	case nil:
		return ""
	case models.MultipleChoice:
		for _, a := range it.Answers {
			if a.Correct {
				return ""
			}
		}
		return "multiple choice without a correct answer"
	case models.Balloons:
		if len(it.Items) == 0 {
			return "balloons without items"
		}
	case models.Shield:
		if len(it.Items) == 0 {
			return "shield without items"
		}
	case models.SubLocations:
		if len(data.SubScenes) < it.Required() {
			return fmt.Sprintf("%d sub-scenes cannot satisfy %d required visits", len(data.SubScenes), it.Required())
		}
	case models.CodeCracker:
		return validateCode(it)
	}
	return ""
}

func validateCode(c models.CodeCracker) string {
	if len(c.Questions) != len(c.Target()) {
		return fmt.Sprintf("%d questions for a %d digit code", len(c.Questions), len(c.Target()))
	}
	var digits strings.Builder
	for _, q := range c.Questions {
		var nonzero []int
		for _, o := range q.Options {
			if o.Value != 0 {
				nonzero = append(nonzero, o.Value)
			}
		}
		if len(nonzero) != 1 {
			return fmt.Sprintf("question %q needs exactly one digit option", q.ID)
		}
		if nonzero[0] < 1 || nonzero[0] > 9 {
			return fmt.Sprintf("question %q digit %d out of range", q.ID, nonzero[0])
		}
		digits.WriteString(strconv.Itoa(nonzero[0]))
	}
	if digits.String() != c.Target() {
		return "answers do not spell the target code"
	}
	return ""
}

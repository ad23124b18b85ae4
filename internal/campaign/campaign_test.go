package campaign_test

import (
	"testing"

	"github.com/WingsGames/Neve-Or/internal/campaign"
	"github.com/WingsGames/Neve-Or/internal/content"
	"github.com/WingsGames/Neve-Or/internal/i18n"
	"github.com/WingsGames/Neve-Or/internal/models"
	"github.com/stretchr/testify/require"
)

func testNodes() []models.Node {
	return []models.Node{
		{ID: models.HubConfigNodeID, Type: models.NodeTypeHub},
		{ID: "intro", Type: models.NodeTypeIntro},
		{ID: "a", Type: models.NodeTypeScenario},
		{ID: "b", Type: models.NodeTypeScenario, JumpTo: "d"},
		{ID: "c", Type: models.NodeTypeScenario},
		{ID: "d", Type: models.NodeTypeQuiz},
	}
}

func locked(nodes []models.Node) map[string]bool {
	out := map[string]bool{}
	for _, n := range nodes {
		out[n.ID] = n.IsLocked
	}
	return out
}

func TestFreshState(t *testing.T) {
	t.Parallel()
	state := campaign.FreshState(testNodes())
	require.Empty(t, state.CurrentNodeID)
	require.Zero(t, state.Score)
	require.Equal(t, map[string]bool{
		models.HubConfigNodeID: false, "intro": false, "a": false, "b": true, "c": true, "d": true,
	}, locked(state.Nodes))
}

func TestComplete(t *testing.T) {
	t.Parallel()
	nodes := campaign.FreshState(testNodes()).Nodes

	outcome := campaign.Complete(nodes, "a")
	require.Equal(t, "b", outcome.Unlocked)
	require.Equal(t, models.HubNodeID, outcome.Destination)
	require.True(t, outcome.Nodes[2].IsCompleted)
	require.Equal(t, map[string]bool{
		models.HubConfigNodeID: false, "intro": false, "a": false, "b": false, "c": true, "d": true,
	}, locked(outcome.Nodes), "only the next node unlocks")
	require.False(t, nodes[2].IsCompleted, "input is not modified")
	require.True(t, nodes[3].IsLocked, "input is not modified")

	outcome = campaign.Complete(outcome.Nodes, "b")
	require.Equal(t, "d", outcome.Destination, "jump target overrides the hub")
	require.Equal(t, "c", outcome.Unlocked, "unlock by order still applies")
	require.True(t, locked(outcome.Nodes)["d"])

	again := campaign.Complete(outcome.Nodes, "b")
	require.Empty(t, again.Unlocked, "replaying unlocks nothing new")

	last := campaign.Complete(outcome.Nodes, "d")
	require.Empty(t, last.Unlocked)
	require.Equal(t, models.HubNodeID, last.Destination)

	missing := campaign.Complete(outcome.Nodes, "nowhere")
	require.Equal(t, outcome.Nodes, missing.Nodes)
}

func TestRebase_languageRoundTrip(t *testing.T) {
	t.Parallel()
	catalog := content.MustLoadEmbedded()
	hebrew := campaign.FreshState(catalog.Nodes(i18n.Hebrew)).Nodes

	english := campaign.Rebase(catalog.Nodes(i18n.English), hebrew)
	i := models.FindNode(english, "school_lior")
	english = campaign.Complete(english, "school_lior").Nodes
	english[i].Data.BackgroundImage = "/assets/backgrounds/school_lior_1.jpg"
	english[i].Data.CharacterImages = map[string]string{"Lior": "/assets/characters/school_lior_Lior_1.jpg"}

	back := campaign.Rebase(catalog.Nodes(i18n.Hebrew), english)
	fresh := catalog.Nodes(i18n.Hebrew)
	require.Equal(t, fresh[i].Title, back[i].Title)
	require.Equal(t, fresh[i].Data.Description, back[i].Data.Description)
	require.Equal(t, "/assets/backgrounds/school_lior_1.jpg", back[i].Data.BackgroundImage)
	require.Equal(t, "/assets/characters/school_lior_Lior_1.jpg", back[i].Data.CharacterImages["Lior"])
	require.True(t, back[i].IsCompleted)
	require.False(t, back[i+1].IsLocked)
	require.True(t, back[i+2].IsLocked)
}

func TestRebase_keepsFreshAssetsWhenEmpty(t *testing.T) {
	t.Parallel()
	fresh := []models.Node{{ID: "a", Data: models.NodeContent{
		BackgroundImage: "fresh.jpg",
		SubScenes:       []models.SubScene{{ID: "s", BackgroundImage: "sub.jpg"}},
	}}}
	current := []models.Node{{ID: "a", Data: models.NodeContent{SubScenes: []models.SubScene{{ID: "s"}}}}}
	out := campaign.Rebase(fresh, current)
	require.Equal(t, "fresh.jpg", out[0].Data.BackgroundImage)
	require.Equal(t, "sub.jpg", out[0].Data.SubScenes[0].BackgroundImage)
}

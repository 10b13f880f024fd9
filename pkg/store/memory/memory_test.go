package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fable/pkg/schema"
	"fable/pkg/store"
)

func TestProjectRoundTrip(t *testing.T) {
	s := New()
	ctx := context.Background()

	p := schema.Project{Name: "Starfall"}
	require.NoError(t, s.CreateProject(ctx, &p))
	require.NotEmpty(t, p.ID)

	got, err := s.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Starfall", got.Name)

	list, err := s.ListProjects(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, s.DeleteProject(ctx, p.ID))
	_, err = s.GetProject(ctx, p.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCharacterScopedByProject(t *testing.T) {
	s := New()
	ctx := context.Background()

	p1 := schema.Project{Name: "one"}
	p2 := schema.Project{Name: "two"}
	require.NoError(t, s.CreateProject(ctx, &p1))
	require.NoError(t, s.CreateProject(ctx, &p2))

	a := schema.Character{ProjectID: p1.ID, Name: "Mira"}
	b := schema.Character{ProjectID: p2.ID, Name: "Joss"}
	require.NoError(t, s.CreateCharacter(ctx, &a))
	require.NoError(t, s.CreateCharacter(ctx, &b))

	list, err := s.ListCharacters(ctx, p1.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Mira", list[0].Name)

	all, err := s.ListCharacters(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestLinkAccessoryConflict(t *testing.T) {
	s := New()
	ctx := context.Background()

	ch := schema.Character{ProjectID: "p", Name: "Mira"}
	require.NoError(t, s.CreateCharacter(ctx, &ch))
	o := schema.Outfit{CharacterID: ch.ID, Name: "travel cloak"}
	require.NoError(t, s.CreateOutfit(ctx, &o))
	a := schema.Accessory{CharacterID: ch.ID, Name: "silver pin"}
	require.NoError(t, s.CreateAccessory(ctx, &a))

	require.NoError(t, s.LinkAccessory(ctx, o.ID, a.ID))
	assert.ErrorIs(t, s.LinkAccessory(ctx, o.ID, a.ID), store.ErrConflict)

	links, err := s.ListOutfitAccessories(ctx, o.ID)
	require.NoError(t, err)
	assert.Len(t, links, 1)

	require.NoError(t, s.UnlinkAccessory(ctx, o.ID, a.ID))
	require.NoError(t, s.LinkAccessory(ctx, o.ID, a.ID))
}

func TestAvatarTimelineSequencing(t *testing.T) {
	s := New()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		e := schema.AvatarTimelineEntry{CharacterID: "ch-1", ImagePath: "img.webp"}
		require.NoError(t, s.AppendAvatar(ctx, &e))
		assert.Equal(t, i, e.Seq)
	}

	timeline, err := s.ListAvatarTimeline(ctx, "ch-1")
	require.NoError(t, err)
	require.Len(t, timeline, 3)
	for i, e := range timeline {
		assert.Equal(t, i, e.Seq)
	}
}

func TestReorderChoices(t *testing.T) {
	s := New()
	ctx := context.Background()

	sc := schema.Scene{ProjectID: "p", Title: "crossroads"}
	require.NoError(t, s.CreateScene(ctx, &sc))

	var ids []string
	for _, label := range []string{"left", "right", "wait"} {
		ch := schema.SceneChoice{SceneID: sc.ID, Label: label}
		require.NoError(t, s.CreateChoice(ctx, &ch))
		ids = append(ids, ch.ID)
	}

	// Reverse the order.
	require.NoError(t, s.ReorderChoices(ctx, sc.ID, []string{ids[2], ids[1], ids[0]}))

	got, err := s.ListChoices(ctx, sc.ID)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "wait", got[0].Label)
	assert.Equal(t, "right", got[1].Label)
	assert.Equal(t, "left", got[2].Label)
	for i, ch := range got {
		assert.Equal(t, i, ch.Order)
	}
}

func TestBeatDependencies(t *testing.T) {
	s := New()
	ctx := context.Background()

	a := schema.Beat{ProjectID: "p", Act: 1, Title: "inciting incident"}
	b := schema.Beat{ProjectID: "p", Act: 2, Title: "midpoint"}
	require.NoError(t, s.CreateBeat(ctx, &a))
	require.NoError(t, s.CreateBeat(ctx, &b))

	require.NoError(t, s.AddBeatDependency(ctx, b.ID, a.ID))
	assert.ErrorIs(t, s.AddBeatDependency(ctx, b.ID, a.ID), store.ErrConflict)
	assert.ErrorIs(t, s.AddBeatDependency(ctx, b.ID, "missing"), store.ErrNotFound)

	deps, err := s.ListBeatDependencies(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, deps, 1)
	assert.Equal(t, a.ID, deps[0].DependsOn)

	require.NoError(t, s.RemoveBeatDependency(ctx, b.ID, a.ID))
	deps, err = s.ListBeatDependencies(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, deps)
}

func TestPacingReport(t *testing.T) {
	s := New()
	ctx := context.Background()

	for i, act := range []int{1, 1, 2, 3} {
		b := schema.Beat{ProjectID: "p", Act: act, Title: "beat", Position: i}
		require.NoError(t, s.CreateBeat(ctx, &b))
	}
	other := schema.Beat{ProjectID: "other", Act: 1, Title: "elsewhere"}
	require.NoError(t, s.CreateBeat(ctx, &other))

	report, err := s.Pacing(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, 4, report.Total)
	assert.Equal(t, 2, report.PerAct[1])
	assert.Equal(t, 1, report.PerAct[2])
	assert.Equal(t, 1, report.PerAct[3])
	// Acts 2 and 3 each carry a single beat.
	assert.Len(t, report.Warnings, 2)
}

package admin

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jifma-project/jifmactl/internal/fields"
	"github.com/jifma-project/jifmactl/internal/gateway"
	"github.com/jifma-project/jifmactl/internal/record"
)

type call struct {
	op   string
	kind record.Kind
	id   record.ID
}

// fakeGateway serves canned collections and records every call
type fakeGateway struct {
	mu       sync.Mutex
	data     map[record.Kind][]record.Record
	listErr  map[record.Kind]error
	writeErr error
	calls    []call
	payloads []map[string]any
	// gate, when set for a kind, blocks List until it is closed
	gate map[record.Kind]chan struct{}
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		data:    make(map[record.Kind][]record.Record),
		listErr: make(map[record.Kind]error),
		gate:    make(map[record.Kind]chan struct{}),
	}
}

func (f *fakeGateway) List(ctx context.Context, kind record.Kind) ([]record.Record, error) {
	f.mu.Lock()
	f.calls = append(f.calls, call{op: "list", kind: kind})
	gate := f.gate[kind]
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.listErr[kind]; err != nil {
		return nil, err
	}
	return append([]record.Record(nil), f.data[kind]...), nil
}

func (f *fakeGateway) Create(ctx context.Context, kind record.Kind, payload map[string]any) (record.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{op: "create", kind: kind})
	f.payloads = append(f.payloads, payload)
	return nil, f.writeErr
}

func (f *fakeGateway) Update(ctx context.Context, kind record.Kind, id record.ID, payload map[string]any) (record.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{op: "update", kind: kind, id: id})
	f.payloads = append(f.payloads, payload)
	return nil, f.writeErr
}

func (f *fakeGateway) Delete(ctx context.Context, kind record.Kind, id record.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{op: "delete", kind: kind, id: id})
	if f.writeErr != nil {
		return f.writeErr
	}
	kept := f.data[kind][:0:0]
	for _, rec := range f.data[kind] {
		if rec.RecordID() != id {
			kept = append(kept, rec)
		}
	}
	f.data[kind] = kept
	return nil
}

func (f *fakeGateway) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.op == op {
			n++
		}
	}
	return n
}

func (f *fakeGateway) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
	f.payloads = nil
}

func newTestOrchestrator(gw gateway.Gateway) *Orchestrator {
	return New(gw, fields.NewRegistry(), Config{
		MessageTTL: DefaultMessageTTL,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func seededGateway() *fakeGateway {
	gw := newFakeGateway()
	gw.data[record.KindNews] = []record.Record{
		record.NewsItem{ID: "1", Title: "Abertura dos jogos", Content: "c", Author: "a"},
		record.NewsItem{ID: "2", Title: "Final do futsal", Content: "c", Author: "a"},
	}
	gw.data[record.KindTeam] = []record.Record{
		record.Team{ID: "t1", Name: "Informática", City: "Maracanaú"},
		record.Team{ID: "t2", Name: "Química", City: "Fortaleza"},
	}
	gw.data[record.KindSport] = []record.Record{record.Sport{ID: "s1", Name: "Futsal", Type: record.SportCollective}}
	gw.data[record.KindGame] = []record.Record{
		record.Game{ID: "g1", SportID: "s1", TeamAID: "t1", TeamBID: "t2", Status: record.StatusFinished},
		record.Game{ID: "g2", SportID: "s1", TeamAID: "t2", TeamBID: "t1", Status: record.StatusScheduled},
		record.Game{ID: "g3", SportID: "s1", TeamAID: "t2", TeamBID: "t1", Status: record.StatusScheduled},
	}
	gw.data[record.KindMedal] = []record.Record{record.MedalTally{TeamID: "t1", Gold: 1, Total: 1}}
	return gw
}

func TestSelectSection_DashboardLoadsAll(t *testing.T) {
	gw := seededGateway()
	o := newTestOrchestrator(gw)

	require.NoError(t, o.SelectSection(context.Background(), SectionDashboard))

	assert.Equal(t, 5, gw.count("list"))
	summary := o.Summary()
	assert.Equal(t, 2, summary.Counts[record.KindNews])
	assert.Equal(t, 3, summary.Counts[record.KindGame])
	assert.Equal(t, 1, summary.Finished)
	assert.Equal(t, 2, summary.Scheduled)
	assert.False(t, o.Loading())
}

func TestSelectSection_SingleKind(t *testing.T) {
	gw := seededGateway()
	o := newTestOrchestrator(gw)

	require.NoError(t, o.SelectSection(context.Background(), SectionTeams))

	assert.Equal(t, []call{{op: "list", kind: record.KindTeam}}, gw.calls)
	assert.Equal(t, 2, o.Collection(record.KindTeam).Len())
	assert.Equal(t, 0, o.Collection(record.KindNews).Len())
}

func TestSelectSection_SettingsLoadsNothing(t *testing.T) {
	gw := seededGateway()
	o := newTestOrchestrator(gw)

	require.NoError(t, o.SelectSection(context.Background(), SectionSettings))
	assert.Zero(t, gw.count("list"))
	assert.Equal(t, SectionSettings, o.Active())
}

func TestSelectSection_PartialFailureKeepsPreviousData(t *testing.T) {
	ctx := context.Background()
	gw := seededGateway()
	o := newTestOrchestrator(gw)
	require.NoError(t, o.SelectSection(ctx, SectionDashboard))

	gw.data[record.KindNews] = append(gw.data[record.KindNews], record.NewsItem{ID: "3", Title: "new"})
	gw.data[record.KindTeam] = nil
	gw.listErr[record.KindTeam] = &gateway.NetworkError{Op: "GET", URL: "/api/teams", Err: errors.New("refused")}

	err := o.SelectSection(ctx, SectionDashboard)

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Contains(t, loadErr.Failed, record.KindTeam)
	var netErr *gateway.NetworkError
	assert.ErrorAs(t, err, &netErr)

	assert.Equal(t, 3, o.Collection(record.KindNews).Len(), "successful kinds still refresh")
	assert.Equal(t, 2, o.Collection(record.KindTeam).Len(), "failed kind keeps stale data")

	msg, ok := o.Message()
	require.True(t, ok)
	assert.Equal(t, Message{Text: "failed to load data", Kind: MessageError}, msg)
}

func TestSelectSection_FirstLoadFailureLeavesEmpty(t *testing.T) {
	gw := newFakeGateway()
	gw.listErr[record.KindMedal] = &gateway.RemoteError{Status: 500}
	o := newTestOrchestrator(gw)

	err := o.SelectSection(context.Background(), SectionMedals)
	require.Error(t, err)
	assert.Equal(t, 0, o.Collection(record.KindMedal).Len())
	assert.False(t, o.Loading())
}

func TestSelectSection_StaleLoadDiscarded(t *testing.T) {
	ctx := context.Background()
	gw := seededGateway()
	gate := make(chan struct{})
	gw.gate[record.KindNews] = gate
	o := newTestOrchestrator(gw)

	done := make(chan error, 1)
	go func() { done <- o.SelectSection(ctx, SectionNews) }()

	require.Eventually(t, func() bool { return gw.count("list") == 1 }, time.Second, time.Millisecond)
	require.NoError(t, o.SelectSection(ctx, SectionTeams))
	close(gate)

	assert.ErrorIs(t, <-done, ErrSuperseded)
	assert.Equal(t, 0, o.Collection(record.KindNews).Len())
	assert.Equal(t, SectionTeams, o.Active())
	assert.False(t, o.Loading())
}

func TestOpenModal_CreateUsesDefaults(t *testing.T) {
	o := newTestOrchestrator(newFakeGateway())

	require.NoError(t, o.OpenModal(record.KindGame, nil))

	m := o.Modal()
	assert.True(t, m.Open)
	assert.Nil(t, m.Editing)
	assert.Equal(t, "Agendado", o.Draft()["status"])
}

func TestOpenModal_ReplacesOpenModal(t *testing.T) {
	o := newTestOrchestrator(newFakeGateway())
	require.NoError(t, o.OpenModal(record.KindNews, nil))
	require.NoError(t, o.SetField("title", "draft"))

	require.NoError(t, o.OpenModal(record.KindTeam, record.Team{ID: "t1", Name: "Informática", City: "Maracanaú"}))

	assert.Equal(t, record.KindTeam, o.Modal().Kind)
	assert.Equal(t, map[string]string{"name": "Informática", "city": "Maracanaú"}, o.Draft())
}

func TestOpenModal_KindMismatch(t *testing.T) {
	o := newTestOrchestrator(newFakeGateway())
	assert.Error(t, o.OpenModal(record.KindNews, record.Team{ID: "t1"}))
}

func TestEditThenCancelLeavesCollectionUnchanged(t *testing.T) {
	ctx := context.Background()
	gw := seededGateway()
	o := newTestOrchestrator(gw)
	require.NoError(t, o.SelectSection(ctx, SectionTeams))
	before := o.Collection(record.KindTeam).Records()

	rec, ok := o.Find(record.KindTeam, "t1")
	require.True(t, ok)
	require.NoError(t, o.OpenModal(record.KindTeam, rec))
	require.NoError(t, o.SetField("name", "Renamed"))
	o.CloseModal()

	assert.Equal(t, before, o.Collection(record.KindTeam).Records())
	assert.False(t, o.Modal().Open)
	assert.Nil(t, o.Draft())
	assert.Equal(t, 1, gw.count("list"))
}

func TestSubmit_MissingRequiredFieldMakesNoCalls(t *testing.T) {
	gw := seededGateway()
	o := newTestOrchestrator(gw)
	require.NoError(t, o.OpenModal(record.KindNews, nil))
	require.NoError(t, o.SetField("title", "Abertura"))

	err := o.Submit(context.Background())

	var gap *fields.ValidationGap
	require.ErrorAs(t, err, &gap)
	assert.Equal(t, []string{"content", "author"}, gap.Missing)
	assert.Empty(t, gw.calls)
	assert.True(t, o.Modal().Open)
}

func TestSubmit_CreateReloadsOnce(t *testing.T) {
	ctx := context.Background()
	gw := seededGateway()
	o := newTestOrchestrator(gw)
	require.NoError(t, o.SelectSection(ctx, SectionNews))
	gw.reset()

	require.NoError(t, o.OpenModal(record.KindNews, nil))
	for name, value := range map[string]string{"title": "t", "content": "c", "author": "a"} {
		require.NoError(t, o.SetField(name, value))
	}
	require.NoError(t, o.Submit(ctx))

	assert.Equal(t, []call{
		{op: "create", kind: record.KindNews},
		{op: "list", kind: record.KindNews},
	}, gw.calls)
	assert.Equal(t, map[string]any{"title": "t", "content": "c", "author": "a"}, gw.payloads[0])
	assert.False(t, o.Modal().Open)

	msg, ok := o.Message()
	require.True(t, ok)
	assert.Equal(t, Message{Text: "item created", Kind: MessageSuccess}, msg)
}

func TestSubmit_UpdateUsesEditedID(t *testing.T) {
	ctx := context.Background()
	gw := seededGateway()
	o := newTestOrchestrator(gw)
	require.NoError(t, o.SelectSection(ctx, SectionMedals))
	gw.reset()

	rec, ok := o.Find(record.KindMedal, "t1")
	require.True(t, ok)
	require.NoError(t, o.OpenModal(record.KindMedal, rec))
	require.NoError(t, o.SetField("silver_medals", "2"))
	assert.ErrorIs(t, o.SetField("team_id", "t2"), ErrLockedField)

	require.NoError(t, o.Submit(ctx))

	assert.Equal(t, call{op: "update", kind: record.KindMedal, id: "t1"}, gw.calls[0])
	assert.Equal(t, 2, gw.payloads[0]["silver_medals"])
	assert.Equal(t, 1, gw.count("list"))
	msg, _ := o.Message()
	assert.Equal(t, "item updated", msg.Text)
}

func TestSubmit_FailureKeepsDraftAndSkipsReload(t *testing.T) {
	ctx := context.Background()
	gw := seededGateway()
	gw.writeErr = &gateway.RemoteError{Status: 401, Body: `{"msg":"Missing Authorization Header"}`}
	o := newTestOrchestrator(gw)
	require.NoError(t, o.SelectSection(ctx, SectionTeams))
	gw.reset()

	require.NoError(t, o.OpenModal(record.KindTeam, nil))
	require.NoError(t, o.SetField("name", "Edificações"))
	require.NoError(t, o.SetField("city", "Fortaleza"))

	err := o.Submit(ctx)

	var remoteErr *gateway.RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, 401, remoteErr.Status)
	assert.Zero(t, gw.count("list"))
	assert.True(t, o.Modal().Open)
	assert.Equal(t, "Edificações", o.Draft()["name"])
	msg, _ := o.Message()
	assert.Equal(t, Message{Text: "failed to save item", Kind: MessageError}, msg)

	// the operator can retry the same action
	gw.writeErr = nil
	require.NoError(t, o.Submit(ctx))
	assert.Equal(t, 1, gw.count("list"))
}

func TestSubmit_WithoutModal(t *testing.T) {
	o := newTestOrchestrator(newFakeGateway())
	assert.ErrorIs(t, o.Submit(context.Background()), ErrNoModal)
	assert.ErrorIs(t, o.SetField("title", "x"), ErrNoModal)
}

func TestSubmit_BusyWhileLoading(t *testing.T) {
	ctx := context.Background()
	gw := seededGateway()
	gate := make(chan struct{})
	gw.gate[record.KindNews] = gate
	o := newTestOrchestrator(gw)

	done := make(chan error, 1)
	go func() { done <- o.SelectSection(ctx, SectionNews) }()
	require.Eventually(t, o.Loading, time.Second, time.Millisecond)

	require.NoError(t, o.OpenModal(record.KindTeam, nil))
	assert.ErrorIs(t, o.Submit(ctx), ErrBusy)
	assert.ErrorIs(t, o.Remove(ctx, record.KindNews, "1", AlwaysConfirm), ErrBusy)

	close(gate)
	require.NoError(t, <-done)
	assert.Zero(t, gw.count("create"))
	assert.Zero(t, gw.count("delete"))
}

func TestLoadReferences_KeepsSectionLoadBusy(t *testing.T) {
	ctx := context.Background()
	gw := seededGateway()
	gate := make(chan struct{})
	gw.gate[record.KindMedal] = gate
	o := newTestOrchestrator(gw)

	done := make(chan error, 1)
	go func() { done <- o.SelectSection(ctx, SectionDashboard) }()
	require.Eventually(t, func() bool { return gw.count("list") == 5 }, time.Second, time.Millisecond)

	// news has no references, game references sports and teams
	require.NoError(t, o.LoadReferences(ctx, record.KindNews))
	assert.True(t, o.Loading())
	require.NoError(t, o.LoadReferences(ctx, record.KindGame))
	assert.True(t, o.Loading())

	require.NoError(t, o.OpenModal(record.KindTeam, nil))
	require.NoError(t, o.SetField("name", "Edificações"))
	require.NoError(t, o.SetField("city", "Fortaleza"))
	assert.ErrorIs(t, o.Submit(ctx), ErrBusy)
	assert.ErrorIs(t, o.Remove(ctx, record.KindNews, "1", AlwaysConfirm), ErrBusy)

	close(gate)
	require.NoError(t, <-done)
	assert.False(t, o.Loading())
	assert.Zero(t, gw.count("create"))
	assert.Zero(t, gw.count("delete"))
}

func TestRemove_RequiresConfirmer(t *testing.T) {
	gw := seededGateway()
	o := newTestOrchestrator(gw)

	err := o.Remove(context.Background(), record.KindNews, "1", nil)

	assert.ErrorIs(t, err, ErrNoConfirmer)
	assert.Empty(t, gw.calls)
}

func TestRemove_AlwaysConfirm(t *testing.T) {
	ctx := context.Background()
	gw := seededGateway()
	o := newTestOrchestrator(gw)
	require.NoError(t, o.SelectSection(ctx, SectionNews))

	require.NoError(t, o.Remove(ctx, record.KindNews, "2", AlwaysConfirm))

	assert.Equal(t, 1, gw.count("delete"))
	_, ok := o.Find(record.KindNews, "2")
	assert.False(t, ok)
}

func TestRemove_Declined(t *testing.T) {
	gw := seededGateway()
	o := newTestOrchestrator(gw)

	err := o.Remove(context.Background(), record.KindNews, "1", ConfirmFunc(func(record.Kind, record.ID) (bool, error) {
		return false, nil
	}))

	assert.ErrorIs(t, err, ErrDeclined)
	assert.Empty(t, gw.calls)
}

func TestRemove_SuccessRemovesAfterReload(t *testing.T) {
	ctx := context.Background()
	gw := seededGateway()
	o := newTestOrchestrator(gw)
	require.NoError(t, o.SelectSection(ctx, SectionNews))
	gw.reset()

	var seenDuringConfirm bool
	confirm := ConfirmFunc(func(kind record.Kind, id record.ID) (bool, error) {
		_, seenDuringConfirm = o.Find(kind, id)
		return true, nil
	})
	require.NoError(t, o.Remove(ctx, record.KindNews, "1", confirm))

	assert.True(t, seenDuringConfirm)
	assert.Equal(t, []call{
		{op: "delete", kind: record.KindNews, id: "1"},
		{op: "list", kind: record.KindNews},
	}, gw.calls)
	_, ok := o.Find(record.KindNews, "1")
	assert.False(t, ok)
	msg, _ := o.Message()
	assert.Equal(t, Message{Text: "item deleted", Kind: MessageSuccess}, msg)
}

func TestRemove_FailureKeepsRecord(t *testing.T) {
	ctx := context.Background()
	gw := seededGateway()
	o := newTestOrchestrator(gw)
	require.NoError(t, o.SelectSection(ctx, SectionNews))
	gw.reset()
	gw.writeErr = &gateway.NetworkError{Op: "DELETE", URL: "/api/admin/news/1", Err: errors.New("timeout")}

	err := o.Remove(ctx, record.KindNews, "1", AlwaysConfirm)

	require.Error(t, err)
	assert.Zero(t, gw.count("list"))
	_, ok := o.Find(record.KindNews, "1")
	assert.True(t, ok)
	msg, _ := o.Message()
	assert.Equal(t, Message{Text: "failed to delete item", Kind: MessageError}, msg)
}

func TestMessage_ExpiresUnlessSuperseded(t *testing.T) {
	o := newTestOrchestrator(newFakeGateway())
	var pending []func()
	var ttls []time.Duration
	o.after = func(d time.Duration, f func()) func() bool {
		ttls = append(ttls, d)
		pending = append(pending, f)
		return func() bool { return true }
	}

	o.mu.Lock()
	o.showLocked("first", MessageSuccess)
	o.showLocked("second", MessageError)
	o.mu.Unlock()

	// the first timer fires late and must not clear the newer message
	pending[0]()
	msg, ok := o.Message()
	require.True(t, ok)
	assert.Equal(t, "second", msg.Text)

	pending[1]()
	_, ok = o.Message()
	assert.False(t, ok)
	assert.Equal(t, []time.Duration{3 * time.Second, 3 * time.Second}, ttls)
}

func TestOptions_FromReferencedCollection(t *testing.T) {
	ctx := context.Background()
	gw := seededGateway()
	o := newTestOrchestrator(gw)
	require.NoError(t, o.LoadReferences(ctx, record.KindGame))

	assert.Equal(t, 2, gw.count("list"))

	teams, err := o.Options(record.KindGame, "team_a_id")
	require.NoError(t, err)
	assert.Equal(t, []fields.Option{
		{Value: "t1", Label: "Informática"},
		{Value: "t2", Label: "Química"},
	}, teams)

	statuses, err := o.Options(record.KindGame, "status")
	require.NoError(t, err)
	assert.Len(t, statuses, 3)

	_, err = o.Options(record.KindGame, "nope")
	assert.Error(t, err)
}

func TestParseSection(t *testing.T) {
	tests := []struct {
		in   string
		want Section
	}{
		{"dashboard", SectionDashboard},
		{"Games", SectionGames},
		{"team", SectionTeams},
		{"medal", SectionMedals},
		{"settings", SectionSettings},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSection(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseSection("users")
	assert.ErrorIs(t, err, ErrUnknownSection)
}

package notifier

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/larktask/internal/im"
	"github.com/teemow/larktask/internal/tasks"
)

var fixedNow = time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)

type fakeSource struct {
	task      map[string]tasks.Task
	items     []tasks.Task
	listErr   error
	lastOpts  tasks.ListOptions
	tasklists map[string][]tasks.Task
}

func (f *fakeSource) GetTask(_ context.Context, taskID string) (*tasks.Task, error) {
	t, ok := f.task[taskID]
	if !ok {
		return nil, fmt.Errorf("task %s not found", taskID)
	}
	return &t, nil
}

func (f *fakeSource) ListTasks(_ context.Context, opts tasks.ListOptions) (*tasks.TaskPage, error) {
	f.lastOpts = opts
	if f.listErr != nil {
		return nil, f.listErr
	}
	return &tasks.TaskPage{Items: f.items}, nil
}

func (f *fakeSource) ListTasklistTasks(_ context.Context, tasklistID string, _ int) ([]tasks.Task, error) {
	return f.tasklists[tasklistID], nil
}

type sent struct {
	to   string
	card *im.Card
}

type fakeMessenger struct {
	sent []sent
	fail map[string]error
}

func (f *fakeMessenger) SendCard(_ context.Context, receiveID string, card *im.Card) (*im.Message, error) {
	if err := f.fail[receiveID]; err != nil {
		return nil, err
	}
	f.sent = append(f.sent, sent{to: receiveID, card: card})
	return &im.Message{MessageID: "om_" + receiveID}, nil
}

func body(c *im.Card) string {
	var parts []string
	for _, e := range c.Elements {
		if e.Text != nil {
			parts = append(parts, e.Text.Content)
		}
	}
	return strings.Join(parts, "\n")
}

func newNotifier(src *fakeSource, msg *fakeMessenger, opts ...Option) *Notifier {
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return New(src, msg, opts...)
}

func TestRecipientResolution(t *testing.T) {
	tests := []struct {
		name     string
		assignee string
		fallback string
		want     string
		wantErr  error
	}{
		{name: "explicit assignee", assignee: "ou_a", fallback: "ou_default", want: "ou_a"},
		{name: "default recipient", fallback: "ou_default", want: "ou_default"},
		{name: "none", wantErr: ErrNoRecipient},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := New(&fakeSource{}, &fakeMessenger{}, WithDefaultRecipient(tt.fallback))
			got, err := n.recipient(tt.assignee)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRemindDueSoon(t *testing.T) {
	src := &fakeSource{items: []tasks.Task{
		{TaskID: "t1", Summary: "Review PR", Status: tasks.StatusTodo, DueTime: "2024-03-15T23:59:59+08:00"},
		{TaskID: "t2", Summary: "Deploy", Status: tasks.StatusInProgress},
	}}
	msg := &fakeMessenger{}
	n := newNotifier(src, msg)

	ids, err := n.RemindDueSoon(context.Background(), "ou_alice", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"t1", "t2"}, ids)

	assert.Equal(t, "ou_alice", src.lastOpts.Assignee)
	assert.Equal(t, []string{tasks.StatusTodo, tasks.StatusInProgress}, src.lastOpts.Statuses)
	assert.Equal(t, fixedNow.Add(48*time.Hour), src.lastOpts.DueBefore)

	require.Len(t, msg.sent, 1)
	card := msg.sent[0].card
	assert.Equal(t, im.TemplateOrange, card.Header.Template)
	assert.Equal(t, "⏰ Task reminder (due within 2 days)", card.Header.Title.Content)
	assert.Contains(t, body(card), "You have **2** tasks due soon")
	assert.Contains(t, body(card), "• [todo] Review PR (Due: 2024-03-15)")
	assert.Contains(t, body(card), "• [in_progress] Deploy")
}

func TestRemindDueSoon_NothingDue(t *testing.T) {
	msg := &fakeMessenger{}
	n := newNotifier(&fakeSource{}, msg, WithDefaultRecipient("ou_me"))

	ids, err := n.RemindDueSoon(context.Background(), "", 1)
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.Empty(t, msg.sent)
}

func TestRemindDueSoon_TruncatesList(t *testing.T) {
	var items []tasks.Task
	for i := range 13 {
		items = append(items, tasks.Task{TaskID: fmt.Sprintf("t%d", i), Summary: fmt.Sprintf("task %d", i), Status: tasks.StatusTodo})
	}
	msg := &fakeMessenger{}
	n := newNotifier(&fakeSource{items: items}, msg)

	ids, err := n.RemindDueSoon(context.Background(), "ou_a", 1)
	require.NoError(t, err)
	assert.Len(t, ids, 13)

	text := body(msg.sent[0].card)
	assert.Contains(t, text, "task 9")
	assert.NotContains(t, text, "task 10")
	assert.Contains(t, text, "... and 3 more")
}

func TestRemindDueSoon_NoRecipient(t *testing.T) {
	_, err := newNotifier(&fakeSource{}, &fakeMessenger{}).RemindDueSoon(context.Background(), "", 1)
	assert.ErrorIs(t, err, ErrNoRecipient)
}

func TestRemindDueSoon_ListError(t *testing.T) {
	listErr := errors.New("boom")
	_, err := newNotifier(&fakeSource{listErr: listErr}, &fakeMessenger{}).RemindDueSoon(context.Background(), "ou_a", 1)
	assert.ErrorIs(t, err, listErr)
}

func TestDailyDigest(t *testing.T) {
	var items []tasks.Task
	for i := range 7 {
		items = append(items, tasks.Task{
			TaskID:  fmt.Sprintf("late%d", i),
			Summary: fmt.Sprintf("late %d", i),
			Status:  tasks.StatusTodo,
			DueTime: "2024-03-01T23:59:59+08:00",
		})
	}
	items = append(items,
		tasks.Task{TaskID: "wip", Status: tasks.StatusInProgress, DueTime: "2024-04-01T23:59:59+08:00"},
		tasks.Task{TaskID: "done", Status: tasks.StatusCompleted, DueTime: "2024-03-01T23:59:59+08:00"},
	)
	src := &fakeSource{items: items}
	msg := &fakeMessenger{}

	r, err := newNotifier(src, msg).DailyDigest(context.Background(), "ou_a", true)
	require.NoError(t, err)
	assert.Len(t, r.Overdue, 7)
	assert.Contains(t, src.lastOpts.Statuses, tasks.StatusCompleted)
	assert.Equal(t, tasks.MaxPageSize, src.lastOpts.PageSize)

	card := msg.sent[0].card
	assert.Equal(t, "📊 Daily task digest", card.Header.Title.Content)
	text := body(card)
	assert.Contains(t, text, "**📋 Todo**: 7")
	assert.Contains(t, text, "**🔄 In progress**: 1")
	assert.Contains(t, text, "**✅ Completed**: 1")
	assert.Contains(t, text, "**⚠️ Overdue**: 7")
	assert.Contains(t, text, "• late 4")
	assert.NotContains(t, text, "• late 5")
	assert.Contains(t, text, "... and 2 more")
	assert.Equal(t, "hr", card.Elements[1].Tag)
}

func TestDailyDigest_NoOverdueSection(t *testing.T) {
	src := &fakeSource{items: []tasks.Task{{TaskID: "a", Status: tasks.StatusTodo}}}
	msg := &fakeMessenger{}

	_, err := newNotifier(src, msg).DailyDigest(context.Background(), "ou_a", false)
	require.NoError(t, err)
	assert.NotContains(t, src.lastOpts.Statuses, tasks.StatusCompleted)
	assert.Len(t, msg.sent[0].card.Elements, 1)
}

func TestWeeklyReport(t *testing.T) {
	recent := fixedNow.Add(-48 * time.Hour).Format(time.RFC3339)
	old := fixedNow.Add(-30 * 24 * time.Hour).Format(time.RFC3339)
	src := &fakeSource{tasklists: map[string][]tasks.Task{
		"tl_1": {
			{TaskID: "a", Summary: "Shipped", Status: tasks.StatusCompleted, CreatedTime: old, CompletedTime: recent},
			{TaskID: "b", Summary: "New idea", Status: tasks.StatusTodo, CreatedTime: recent},
			{TaskID: "c", Summary: "Stale", Status: tasks.StatusTodo, CreatedTime: old},
		},
	}}
	msg := &fakeMessenger{}

	s, err := newNotifier(src, msg).WeeklyReport(context.Background(), "ou_lead", "tl_1")
	require.NoError(t, err)
	assert.Equal(t, 3, s.Total)
	assert.Len(t, s.Created, 1)
	assert.Len(t, s.Completed, 1)

	require.Len(t, msg.sent, 1)
	assert.Equal(t, "ou_lead", msg.sent[0].to)
	text := body(msg.sent[0].card)
	assert.Contains(t, text, "**Created this week**: 1")
	assert.Contains(t, text, "**Total tasks**: 3")
	assert.Contains(t, text, "✅ Shipped")
}

func TestWeeklyReport_ByAssignee(t *testing.T) {
	src := &fakeSource{}
	msg := &fakeMessenger{}

	_, err := newNotifier(src, msg, WithDefaultRecipient("ou_me")).WeeklyReport(context.Background(), "", "")
	require.NoError(t, err)
	assert.Equal(t, "ou_me", src.lastOpts.Assignee)
	assert.Len(t, msg.sent[0].card.Elements, 1)
}

func TestNotifyAssigned(t *testing.T) {
	src := &fakeSource{task: map[string]tasks.Task{
		"t1": {TaskID: "t1", Summary: "Fix login", Status: tasks.StatusTodo, URL: "https://applink.feishu.cn/t1", DueTime: "2024-03-20T23:59:59+08:00"},
	}}
	msg := &fakeMessenger{}
	n := newNotifier(src, msg)

	require.NoError(t, n.NotifyAssigned(context.Background(), "t1", "ou_bob", "Alice"))
	require.Len(t, msg.sent, 1)
	card := msg.sent[0].card
	assert.Equal(t, "📋 New task assigned by Alice", card.Header.Title.Content)
	assert.Contains(t, body(card), "**Fix login**")
	assert.Contains(t, body(card), "**Due**: 2024-03-20")
	assert.Equal(t, "https://applink.feishu.cn/t1", card.Elements[len(card.Elements)-1].Actions[0].URL)

	err := n.NotifyAssigned(context.Background(), "missing", "ou_bob", "")
	assert.Error(t, err)
}

func TestNotifyCompleted(t *testing.T) {
	src := &fakeSource{task: map[string]tasks.Task{
		"t1":    {TaskID: "t1", Summary: "Done", Status: tasks.StatusCompleted, Followers: []string{"ou_a", "ou_b", "ou_c"}},
		"alone": {TaskID: "alone", Summary: "Solo"},
	}}
	sendErr := errors.New("bot not in chat")
	msg := &fakeMessenger{fail: map[string]error{"ou_b": sendErr}}
	n := newNotifier(src, msg)

	err := n.NotifyCompleted(context.Background(), "t1")
	require.Error(t, err)
	assert.ErrorIs(t, err, sendErr)
	assert.Contains(t, err.Error(), "ou_b")
	require.Len(t, msg.sent, 2, "remaining followers are still notified")
	assert.Equal(t, im.TemplateGreen, msg.sent[0].card.Header.Template)

	assert.ErrorIs(t, n.NotifyCompleted(context.Background(), "alone"), ErrNoFollowers)
}

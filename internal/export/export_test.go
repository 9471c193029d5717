package export

import (
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/commcal/internal/model"
	"github.com/hitoshi/commcal/internal/repository"
)

func sampleEvent() *model.Event {
	return &model.Event{
		ID:          "event-1",
		Title:       "Beach Cleanup Day!",
		EventDate:   time.Date(2026, 3, 20, 14, 30, 0, 0, time.Local),
		Description: "Bring gloves and sunscreen",
		Location:    "North Beach",
		Category:    model.CategoryService,
		CreatedAt:   time.Date(2026, 3, 1, 9, 0, 0, 0, time.Local),
		UpdatedAt:   time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local),
	}
}

// 名簿CSVが2セクション構成で出力されることを検証
func TestRosterCSV_TwoSectionLayout(t *testing.T) {
	signups := []repository.SignupWithAccount{
		{
			Signup:   model.Signup{CreatedAt: time.Date(2026, 3, 10, 8, 15, 0, 0, time.Local)},
			FullName: "Jane Smith",
			Email:    "jane@example.com",
		},
		{
			Signup:   model.Signup{CreatedAt: time.Date(2026, 3, 11, 19, 0, 0, 0, time.Local)},
			FullName: "Bob Jones",
			Email:    "bob@example.com",
		},
	}

	data, err := RosterCSV(sampleEvent(), signups)
	if err != nil {
		t.Fatalf("RosterCSV failed: %v", err)
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")

	if lines[0] != "Event Details" {
		t.Errorf("line 0 = %q, want %q", lines[0], "Event Details")
	}
	if lines[1] != "Title,Beach Cleanup Day!" {
		t.Errorf("line 1 = %q", lines[1])
	}
	if lines[2] != "Date,\"March 20, 2026 at 02:30 PM\"" {
		t.Errorf("line 2 = %q", lines[2])
	}
	if lines[3] != "Category,Service" {
		t.Errorf("line 3 = %q", lines[3])
	}
	// セクション間の空行
	if lines[6] != "" {
		t.Errorf("line 6 = %q, want blank separator", lines[6])
	}
	if lines[7] != "Signups" {
		t.Errorf("line 7 = %q, want %q", lines[7], "Signups")
	}
	if lines[8] != "Name,Email,Signed Up At" {
		t.Errorf("line 8 = %q", lines[8])
	}
	// 参加登録は保存順
	if !strings.HasPrefix(lines[9], "Jane Smith,jane@example.com,") {
		t.Errorf("line 9 = %q", lines[9])
	}
	if !strings.HasPrefix(lines[10], "Bob Jones,bob@example.com,") {
		t.Errorf("line 10 = %q", lines[10])
	}
}

// 参加登録ゼロのイベントでもヘッダーまで出力されることを検証
func TestRosterCSV_NoSignups(t *testing.T) {
	data, err := RosterCSV(sampleEvent(), nil)
	if err != nil {
		t.Fatalf("RosterCSV failed: %v", err)
	}

	out := string(data)
	if !strings.Contains(out, "Signups\n") {
		t.Error("expected Signups section header")
	}
	if !strings.Contains(out, "Name,Email,Signed Up At\n") {
		t.Error("expected signup column header")
	}
}

// ファイル名がスラグとエクスポート実行日のYYYYMMDDで組み立てられることを検証
func TestRosterFilename(t *testing.T) {
	exportedAt := time.Date(2026, 4, 2, 11, 0, 0, 0, time.Local)
	// 開催日(3/20)ではなくエクスポート実行日が入る
	if got := RosterFilename(sampleEvent(), exportedAt); got != "beach_cleanup_day_signups_20260402.csv" {
		t.Errorf("RosterFilename = %q", got)
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Beach Cleanup Day!", "beach_cleanup_day"},
		{"Bush School: Term 2", "bush_school_term_2"},
		{"   ", "event"},
		{"日本語タイトル", "event"},
	}

	for _, tt := range tests {
		if got := slugify(tt.title); got != tt.want {
			t.Errorf("slugify(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}

// iCalendarにイベントごとのVEVENTが含まれることを検証
func TestBuildCalendar_OneVEventPerEvent(t *testing.T) {
	events := []*model.Event{
		sampleEvent(),
		{
			ID:          "event-2",
			Title:       "Social Night",
			EventDate:   time.Date(2026, 4, 1, 18, 0, 0, 0, time.Local),
			Description: "BYO",
			Category:    model.CategorySocial,
		},
	}

	ics := BuildCalendar(events)

	if got := strings.Count(ics, "BEGIN:VEVENT"); got != 2 {
		t.Errorf("VEVENT count = %d, want 2", got)
	}
	if !strings.Contains(ics, "SUMMARY:Beach Cleanup Day!") {
		t.Error("expected first event summary")
	}
	if !strings.Contains(ics, "SUMMARY:Social Night") {
		t.Error("expected second event summary")
	}
	if !strings.Contains(ics, "LOCATION:North Beach") {
		t.Error("expected location property")
	}
	if !strings.Contains(ics, "CATEGORIES:Service") {
		t.Error("expected category property")
	}
	if !strings.Contains(ics, "METHOD:PUBLISH") {
		t.Error("expected publish method")
	}
}

func TestBuildCalendar_Empty(t *testing.T) {
	ics := BuildCalendar(nil)
	if !strings.Contains(ics, "BEGIN:VCALENDAR") {
		t.Error("expected calendar envelope")
	}
	if strings.Contains(ics, "BEGIN:VEVENT") {
		t.Error("expected no events")
	}
}

// 共有リンクの組み立てを検証
func TestShareURL(t *testing.T) {
	tests := []struct {
		baseURL string
		want    string
	}{
		{"https://cal.example.com", "https://cal.example.com/events/event-1"},
		{"https://cal.example.com/", "https://cal.example.com/events/event-1"},
	}

	for _, tt := range tests {
		if got := ShareURL(tt.baseURL, "event-1"); got != tt.want {
			t.Errorf("ShareURL(%q) = %q, want %q", tt.baseURL, got, tt.want)
		}
	}
}

// QRコードがPNGのdata URIとして返ることを検証
func TestQRCodeDataURI(t *testing.T) {
	uri, err := QRCodeDataURI("https://cal.example.com/events/event-1")
	if err != nil {
		t.Fatalf("QRCodeDataURI failed: %v", err)
	}
	if !strings.HasPrefix(uri, "data:image/png;base64,") {
		t.Errorf("uri prefix = %q", uri[:30])
	}
	if len(uri) < 100 {
		t.Errorf("uri suspiciously short: %d bytes", len(uri))
	}
}

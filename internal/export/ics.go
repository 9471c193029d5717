package export

import (
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/hitoshi/commcal/internal/model"
)

// defaultEventDuration はDTEND算出に使うイベントの想定所要時間。
// イベントは開始時刻のみを持つため、カレンダー表示用に2時間枠を与える。
const defaultEventDuration = 2 * time.Hour

// BuildCalendar は全イベントをVEVENTとして含むiCalendarを組み立てる。
// 購読側のカレンダーアプリでの取り込みを想定し、METHOD:PUBLISHで配信する。
func BuildCalendar(events []*model.Event) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//commcal//community calendar//EN")

	for _, event := range events {
		ve := cal.AddEvent(event.ID)
		ve.SetCreatedTime(event.CreatedAt)
		ve.SetDtStampTime(event.UpdatedAt)
		ve.SetModifiedAt(event.UpdatedAt)
		ve.SetStartAt(event.EventDate)
		ve.SetEndAt(event.EventDate.Add(defaultEventDuration))
		ve.SetSummary(event.Title)
		ve.SetDescription(event.Description)
		if event.Location != "" {
			ve.SetLocation(event.Location)
		}
		// カテゴリはCATEGORIESプロパティで購読側のフィルタに使える
		ve.AddProperty(ical.ComponentPropertyCategories, string(event.Category))
	}

	return cal.Serialize()
}

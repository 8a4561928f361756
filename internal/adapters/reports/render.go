package reports

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"plantcore/pkg/domain"
)

type careHistoryRow struct {
	PlantID     string `json:"plant_id"`
	Category    string `json:"category"`
	PerformedAt string `json:"performed_at"`
	Detail      string `json:"detail,omitempty"`
	BatchID     string `json:"batch_id,omitempty"`
	Note        string `json:"note,omitempty"`
}

type scheduleRow struct {
	GroupID    string `json:"group_id"`
	Name       string `json:"name"`
	Category   string `json:"category"`
	Stage      string `json:"stage"`
	DueAt      string `json:"due_at"`
	PlantCount int    `json:"plant_count"`
	Variety    string `json:"variety"`
	Location   string `json:"location,omitempty"`
	Container  string `json:"container,omitempty"`
}

type catchUpRow struct {
	TaskID   string `json:"task_id"`
	PlantID  string `json:"plant_id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Stage    string `json:"stage"`
	DueAt    string `json:"due_at"`
}

// render produces the report payload for one kind and format.
func (w *Worker) render(kind Kind, plantID string, format Format) ([]byte, string, error) {
	switch kind {
	case KindCareHistory:
		rows, err := w.careHistoryRows(plantID)
		if err != nil {
			return nil, "", err
		}
		return encodeRows(format, careHistoryHeader, rows, func(r careHistoryRow) []string {
			return []string{r.PlantID, r.Category, r.PerformedAt, r.Detail, r.BatchID, r.Note}
		})
	case KindSchedule:
		groups, err := w.service.UpcomingTasks(w.ctx, 0)
		if err != nil {
			return nil, "", err
		}
		rows := make([]scheduleRow, 0, len(groups))
		for _, g := range groups {
			rows = append(rows, scheduleRow{
				GroupID:    g.GroupID,
				Name:       g.Name,
				Category:   string(g.Category),
				Stage:      string(g.Stage),
				DueAt:      g.DueAt.Format(time.RFC3339),
				PlantCount: g.PlantCount,
				Variety:    g.VarietyName,
				Location:   g.Location,
				Container:  g.Container,
			})
		}
		return encodeRows(format, scheduleHeader, rows, func(r scheduleRow) []string {
			return []string{r.GroupID, r.Name, r.Category, r.Stage, r.DueAt, strconv.Itoa(r.PlantCount), r.Variety, r.Location, r.Container}
		})
	case KindCatchUp:
		missed, err := w.service.MissedOpportunities(w.ctx, plantID, 0)
		if err != nil {
			return nil, "", err
		}
		rows := make([]catchUpRow, 0, len(missed))
		for _, m := range missed {
			rows = append(rows, catchUpRow{
				TaskID:   m.TaskID,
				PlantID:  m.PlantID,
				Name:     m.Name,
				Category: string(m.Category),
				Stage:    string(m.Stage),
				DueAt:    m.DueAt.Format(time.RFC3339),
			})
		}
		return encodeRows(format, catchUpHeader, rows, func(r catchUpRow) []string {
			return []string{r.TaskID, r.PlantID, r.Name, r.Category, r.Stage, r.DueAt}
		})
	default:
		return nil, "", fmt.Errorf("unknown report kind %q", kind)
	}
}

var (
	careHistoryHeader = []string{"plant_id", "category", "performed_at", "detail", "batch_id", "note"}
	scheduleHeader    = []string{"group_id", "name", "category", "stage", "due_at", "plant_count", "variety", "location", "container"}
	catchUpHeader     = []string{"task_id", "plant_id", "name", "category", "stage", "due_at"}
)

func (w *Worker) careHistoryRows(plantID string) ([]careHistoryRow, error) {
	var rows []careHistoryRow
	err := w.service.Store().View(w.ctx, func(view domain.TransactionView) error {
		var plants []domain.Plant
		if plantID != "" {
			plant, ok := view.FindPlant(plantID)
			if !ok {
				return fmt.Errorf("plant %s not found", plantID)
			}
			plants = []domain.Plant{plant}
		} else {
			plants = view.ListPlants()
		}
		for _, plant := range plants {
			for _, act := range view.ListCareActivities(plant.ID, "") {
				row := careHistoryRow{
					PlantID:     act.PlantID,
					Category:    string(act.Category),
					PerformedAt: act.PerformedAt.Format(time.RFC3339),
					Detail:      detailSummary(act.Details),
				}
				if act.BatchID != nil {
					row.BatchID = *act.BatchID
				}
				if act.Note != nil {
					row.Note = *act.Note
				}
				rows = append(rows, row)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func detailSummary(details domain.CareDetails) string {
	switch d := details.(type) {
	case domain.WateringDetails:
		return fmt.Sprintf("%dml %s", d.VolumeML, d.Method)
	case domain.FeedingDetails:
		return fmt.Sprintf("%s %s %dml", d.Product, d.NPK, d.DilutionML)
	case domain.InspectionDetails:
		return d.Focus
	default:
		return ""
	}
}

func encodeRows[T any](format Format, header []string, rows []T, record func(T) []string) ([]byte, string, error) {
	switch format {
	case FormatJSON:
		payload, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			return nil, "", err
		}
		return payload, "application/json", nil
	case FormatCSV:
		var buf bytes.Buffer
		cw := csv.NewWriter(&buf)
		if err := cw.Write(header); err != nil {
			return nil, "", err
		}
		for _, row := range rows {
			if err := cw.Write(record(row)); err != nil {
				return nil, "", err
			}
		}
		cw.Flush()
		if err := cw.Error(); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), "text/csv", nil
	default:
		return nil, "", fmt.Errorf("unsupported format %q", format)
	}
}

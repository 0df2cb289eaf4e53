package app

import (
	"time"

	"morningdeck/api/internal/deck"
	"morningdeck/api/internal/store"
)

// JSON shapes for the HTTP layer. Nullable timestamps render as null rather
// than zero values.

func optionalTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339)
}

func clientPayload(c store.Client) map[string]any {
	return map[string]any{
		"id":             c.ID,
		"name":           c.Name,
		"status":         c.Status,
		"priority":       c.Priority,
		"industry":       c.Industry,
		"revenue":        c.Revenue,
		"healthScore":    c.HealthScore,
		"bullets":        deck.SplitBullets(c.Bullets),
		"lastContactAt":  optionalTime(c.LastContactAt),
		"lastReviewedAt": optionalTime(c.LastReviewedAt),
		"lastTouchedAt":  optionalTime(c.LastTouchedAt),
		"createdAt":      c.CreatedAt.Format(time.RFC3339),
		"updatedAt":      c.UpdatedAt.Format(time.RFC3339),
	}
}

func clientPayloads(clients []store.Client) []map[string]any {
	out := make([]map[string]any, len(clients))
	for i, c := range clients {
		out[i] = clientPayload(c)
	}
	return out
}

func contactPayloads(contacts []store.Contact) []map[string]any {
	out := make([]map[string]any, len(contacts))
	for i, c := range contacts {
		out[i] = map[string]any{
			"id":        c.ID,
			"clientId":  c.ClientID,
			"name":      c.Name,
			"role":      c.Role,
			"email":     c.Email,
			"phone":     c.Phone,
			"isPrimary": c.IsPrimary,
			"notes":     c.Notes,
			"createdAt": c.CreatedAt.Format(time.RFC3339),
		}
	}
	return out
}

func notePayloads(notes []store.Note) []map[string]any {
	out := make([]map[string]any, len(notes))
	for i, n := range notes {
		out[i] = map[string]any{
			"id":        n.ID,
			"clientId":  n.ClientID,
			"title":     n.Title,
			"content":   n.Content,
			"isPinned":  n.IsPinned,
			"createdAt": n.CreatedAt.Format(time.RFC3339),
			"updatedAt": n.UpdatedAt.Format(time.RFC3339),
		}
	}
	return out
}

func taskPayloads(tasks []store.Task) []map[string]any {
	out := make([]map[string]any, len(tasks))
	for i, t := range tasks {
		out[i] = map[string]any{
			"id":          t.ID,
			"clientId":    t.ClientID,
			"title":       t.Title,
			"description": t.Description,
			"status":      t.Status,
			"priority":    t.Priority,
			"dueDate":     optionalTime(t.DueDate),
			"completedAt": optionalTime(t.CompletedAt),
			"createdAt":   t.CreatedAt.Format(time.RFC3339),
		}
	}
	return out
}

func tagPayloads(tags []store.Tag) []map[string]any {
	out := make([]map[string]any, len(tags))
	for i, t := range tags {
		out[i] = map[string]any{
			"id":    t.ID,
			"name":  t.Name,
			"color": t.Color,
		}
	}
	return out
}

func clientTagPayloads(tags []store.ClientTag) []map[string]any {
	out := make([]map[string]any, len(tags))
	for i, t := range tags {
		out[i] = map[string]any{
			"id":    t.TagID,
			"name":  t.TagName,
			"color": t.TagColor,
		}
	}
	return out
}

func activityPayloads(entries []store.ActivityEntry) []map[string]any {
	out := make([]map[string]any, len(entries))
	for i, e := range entries {
		out[i] = map[string]any{
			"id":         e.ID,
			"clientId":   e.ClientID,
			"entityType": e.EntityType,
			"entityId":   e.EntityID,
			"action":     e.Action,
			"details":    e.Details,
			"createdAt":  e.CreatedAt.Format(time.RFC3339),
		}
	}
	return out
}

func runItemPayload(item store.RunItem) map[string]any {
	payload := map[string]any{
		"id":          item.ID,
		"runId":       item.RunID,
		"clientId":    item.ClientID,
		"ordinal":     item.Ordinal,
		"outcome":     nilIfEmpty(item.Outcome),
		"quickNote":   item.QuickNote,
		"reviewedAt":  optionalTime(item.ReviewedAt),
		"contactMade": item.ContactMade,
	}
	if item.ClientName != "" {
		payload["client"] = map[string]any{
			"name":          item.ClientName,
			"status":        item.ClientStatus,
			"priority":      item.ClientPriority,
			"industry":      item.ClientIndustry,
			"healthScore":   item.ClientHealthScore,
			"bullets":       deck.SplitBullets(item.ClientBullets),
			"lastContactAt": optionalTime(item.ClientLastContactAt),
			"lastTouchedAt": optionalTime(item.ClientLastTouchedAt),
		}
	}
	return payload
}

func runItemPayloads(items []store.RunItem) []map[string]any {
	out := make([]map[string]any, len(items))
	for i, item := range items {
		out[i] = runItemPayload(item)
	}
	return out
}

func todayDeckPayload(d TodayDeck) map[string]any {
	states := make([]deck.ItemState, len(d.Items))
	for i, item := range d.Items {
		states[i] = deck.ItemState{ID: item.ID, Ordinal: item.Ordinal, Outcome: item.Outcome}
	}

	payload := map[string]any{
		"run": map[string]any{
			"id":        d.Run.ID,
			"dayKey":    d.Run.DayKey,
			"createdAt": d.Run.CreatedAt.Format(time.RFC3339),
		},
		"created":  d.Created,
		"items":    runItemPayloads(d.Items),
		"complete": deck.RunComplete(states),
	}
	if next, ok := deck.NextPending(states, 0); ok {
		payload["currentItemId"] = next.ID
	} else {
		payload["currentItemId"] = nil
	}
	if d.FocusNote != nil {
		payload["focusNote"] = focusNotePayload(*d.FocusNote)
	} else {
		payload["focusNote"] = nil
	}
	return payload
}

func focusNotePayload(n store.FocusNote) map[string]any {
	return map[string]any{
		"dayKey":    n.DayKey,
		"body":      n.Body,
		"updatedAt": n.UpdatedAt.Format(time.RFC3339),
	}
}

func dashboardPayload(s DashboardSummary) map[string]any {
	var progress any
	if s.Progress != nil {
		progress = map[string]any{
			"reviewed": s.Progress.Reviewed,
			"flagged":  s.Progress.Flagged,
			"total":    s.Progress.Total,
			"complete": s.Progress.Complete,
		}
	}
	return map[string]any{
		"progress":       progress,
		"streak":         s.Streak,
		"needsAttention": s.NeedsAttention,
		"overdueTasks":   s.OverdueTasks,
		"pendingTasks":   s.PendingTasks,
		"clients": map[string]any{
			"total":              s.Clients.Total,
			"active":             s.Clients.Active,
			"prospect":           s.Clients.Prospect,
			"inactive":           s.Clients.Inactive,
			"highPriorityActive": s.Clients.HighPriorityActive,
		},
	}
}

func runSummaryPayloads(summaries []store.RunSummary) []map[string]any {
	out := make([]map[string]any, len(summaries))
	for i, s := range summaries {
		out[i] = map[string]any{
			"id":        s.ID,
			"dayKey":    s.DayKey,
			"total":     s.Total,
			"reviewed":  s.Reviewed,
			"flagged":   s.Flagged,
			"pending":   s.Pending,
			"complete":  s.Complete,
			"createdAt": s.CreatedAt.Format(time.RFC3339),
		}
	}
	return out
}

func nilIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

package services

import (
	"fmt"

	"github.com/yukikurage/teamtask/internal/models"
)

// fanOut builds one notification per distinct recipient. Zero ids are skipped.
func fanOut(kind models.NotificationType, title, message string, recipients ...uint64) []models.Notification {
	ids := uniqueUint64(recipients)
	out := make([]models.Notification, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		out = append(out, models.Notification{
			Title:   title,
			Message: message,
			Type:    kind,
			UserID:  id,
		})
	}
	return out
}

func taskRecipients(task *models.ProjectTask, team *models.Team) []uint64 {
	ids := []uint64{task.OwnerID}
	if team != nil {
		ids = append(ids, team.MemberIDs()...)
	}
	return ids
}

func taskMessage(verb string, task *models.ProjectTask) string {
	return fmt.Sprintf("Task %q was %s", task.Title, verb)
}

// uniqueUint64 removes duplicates while keeping first-seen order.
func uniqueUint64(ids []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(ids))
	result := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}

// without returns ids minus every id in drop.
func without(ids []uint64, drop ...uint64) []uint64 {
	result := make([]uint64, 0, len(ids))
	for _, id := range ids {
		keep := true
		for _, d := range drop {
			if id == d {
				keep = false
				break
			}
		}
		if keep {
			result = append(result, id)
		}
	}
	return result
}

func contains(ids []uint64, id uint64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

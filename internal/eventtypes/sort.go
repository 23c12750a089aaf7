package eventtypes

import (
	"sort"

	"github.com/openmeet/backend/internal/models"
)

// SortForDisplay orders event types by descending position, then ascending id.
// Repository queries already return this order; sorting again keeps the page
// deterministic for any source.
func SortForDisplay(evts []models.EventType) {
	sort.SliceStable(evts, func(i, j int) bool {
		if evts[i].Position != evts[j].Position {
			return evts[i].Position > evts[j].Position
		}
		return evts[i].ID < evts[j].ID
	})
}

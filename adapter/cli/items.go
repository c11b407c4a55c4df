package cli

import (
	"fmt"
	"io"

	"github.com/felixgeelhaar/tempo/internal/planning/application/commands"
	"github.com/felixgeelhaar/tempo/internal/planning/application/queries"
	"github.com/google/uuid"
)

// ItemOutput is the JSON shape of one batch item.
type ItemOutput struct {
	TaskID uuid.UUID        `json:"task_id"`
	OK     bool             `json:"ok"`
	Task   *queries.TaskDTO `json:"task,omitempty"`
	Error  string           `json:"error,omitempty"`
}

// ItemOutputs converts batch results for JSON output.
func ItemOutputs(items []commands.ItemResult) []ItemOutput {
	out := make([]ItemOutput, 0, len(items))
	for _, it := range items {
		o := ItemOutput{TaskID: it.TaskID, OK: it.OK()}
		if it.Task != nil {
			dto := queries.ToDTO(*it.Task)
			o.Task = &dto
		}
		if it.Err != nil {
			o.Error = it.Err.Error()
		}
		out = append(out, o)
	}
	return out
}

// PrintItems prints one line per batch item, successes under label.
func PrintItems(w io.Writer, label string, items []commands.ItemResult) {
	for _, it := range items {
		if it.OK() && it.Task != nil {
			fmt.Fprintf(w, "%s %s\n", Success(label), FormatTask(queries.ToDTO(*it.Task)))
			continue
		}
		fmt.Fprintf(w, "%s %s: %v\n", Failure("failed"), ShortID(it.TaskID.String()), it.Err)
	}
}

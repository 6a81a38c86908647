package db

import (
	"fmt"
	"strings"
	"time"

	"taskhub/internal/models"
)

// TaskFilter carries the optional listing criteria. A zero-valued field
// contributes no predicate; present fields are conjoined with AND on top of
// the caller-visibility scoping applied by TaskRepository.List.
type TaskFilter struct {
	Search    string
	Status    models.TaskStatus
	Priority  models.TaskPriority
	DueBefore time.Time // inclusive ceiling on due_date
}

// appendClauses folds the present criteria into SQL predicates. Placeholders
// continue the numbering of whatever args were accumulated so far.
func (f TaskFilter) appendClauses(clauses []string, args []any) ([]string, []any) {
	if s := strings.TrimSpace(f.Search); s != "" {
		args = append(args, "%"+escapeLike(strings.ToLower(s))+"%")
		clauses = append(clauses, fmt.Sprintf(`LOWER(title) LIKE $%d ESCAPE '\'`, len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		clauses = append(clauses, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.Priority != "" {
		args = append(args, f.Priority)
		clauses = append(clauses, fmt.Sprintf("priority = $%d", len(args)))
	}
	if !f.DueBefore.IsZero() {
		args = append(args, f.DueBefore)
		clauses = append(clauses, fmt.Sprintf("due_date <= $%d", len(args)))
	}
	return clauses, args
}

// escapeLike neutralizes LIKE metacharacters so search stays a plain
// substring match.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

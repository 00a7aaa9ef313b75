package pipeline

import (
	"fmt"
	"strings"

	"github.com/ezoic/tsreg/core/table"
	"github.com/ezoic/tsreg/pkg/errors"
)

// MinRows is the smallest dataset accepted for training or evaluation.
const MinRows = 20

// Validate checks a feature table and its target before modeling. Every
// violated rule is collected into a single *errors.ValidationError:
//
//   - X has fewer than MinRows rows
//   - X has no feature columns
//   - X has non-numeric columns (all of them are named)
//   - the target is non-numeric
func Validate(X *table.Table, y *table.Column) error {
	var violations []errors.Violation

	if n := X.NumRows(); n < MinRows {
		violations = append(violations, errors.Violation{
			Rule:    errors.RuleInsufficientRows,
			Message: fmt.Sprintf("the dataset has %d rows after cleaning; at least %d are required", n, MinRows),
			Rows:    n,
		})
	}

	if X.NumCols() == 0 {
		violations = append(violations, errors.Violation{
			Rule:    errors.RuleMissingColumns,
			Message: "the dataset has no feature columns besides the target",
		})
	}

	if text := X.TextColumns(); len(text) > 0 {
		violations = append(violations, errors.Violation{
			Rule:    errors.RuleNonNumericColumns,
			Message: "non-numeric columns: " + strings.Join(text, ", "),
			Columns: text,
		})
	}

	if y != nil && !y.IsNumeric() {
		violations = append(violations, errors.Violation{
			Rule:    errors.RuleNonNumericTarget,
			Message: fmt.Sprintf("target column %q is not numeric", y.Name),
			Columns: []string{y.Name},
		})
	}

	if len(violations) > 0 {
		return errors.NewValidationError("pipeline.Validate", violations...)
	}
	return nil
}

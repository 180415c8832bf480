package submit

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/dkotelnikov/spotlist/internal/client/api"
	"github.com/dkotelnikov/spotlist/internal/common"
)

// MinRatedCriteria is the minimum number of scored criteria a submission
// must carry.
const MinRatedCriteria = 1

var validate = validator.New(validator.WithRequiredStructEnabled())

// Form is the locally validated submission input. An empty SpotID means
// create mode; a non-empty one means the spot already exists (edit mode).
type Form struct {
	ListID      string `validate:"required"`
	SpotID      string
	Name        string             `validate:"required,max=80"`
	Category    string             `validate:"required"`
	Score       float64            `validate:"gte=0,lte=5"`
	Criteria    map[string]float64 `validate:"required,min=1,dive,gte=0,lte=5"`
	Address     string
	Description string `validate:"max=2000"`
	Comment     string `validate:"max=2000"`
	Phone       string
	Website     string
}

// Validate runs the pre-flight checks. Failures are local and never reach
// the network.
func (f *Form) Validate() error {
	if err := validate.Struct(f); err != nil {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	if len(f.Criteria) < MinRatedCriteria {
		return fmt.Errorf("%w: at least %d rated criteria required", common.ErrValidation, MinRatedCriteria)
	}
	return nil
}

func (f *Form) mergeRequest() api.MergeSpotRequest {
	return api.MergeSpotRequest{
		ListID:      f.ListID,
		SpotID:      f.SpotID,
		Name:        f.Name,
		Score:       f.Score,
		Criteria:    f.Criteria,
		Comment:     f.Comment,
		Description: f.Description,
		Category:    f.Category,
		Address:     f.Address,
		Phone:       f.Phone,
		Website:     f.Website,
	}
}

package grading

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/sma-results-api/internal/models"
	appErrors "github.com/noah-isme/sma-results-api/pkg/errors"
)

// GradeInfo is the classification of a score.
type GradeInfo struct {
	Grade  string  `json:"grade"`
	Point  float64 `json:"point"`
	Remark string  `json:"remark"`
}

type defaultBand struct {
	min  float64
	info GradeInfo
}

// Evaluated top-down; first match wins.
var defaultTable = []defaultBand{
	{90, GradeInfo{"A+", 4.0, "Excellent"}},
	{80, GradeInfo{"A", 3.7, "Very Good"}},
	{75, GradeInfo{"B+", 3.3, "Good"}},
	{70, GradeInfo{"B", 3.0, "Good"}},
	{65, GradeInfo{"C+", 2.7, "Average"}},
	{60, GradeInfo{"C", 2.3, "Average"}},
	{55, GradeInfo{"D+", 2.0, "Below Average"}},
	{50, GradeInfo{"D", 1.7, "Below Average"}},
	{40, GradeInfo{"E", 1.0, "Poor"}},
}

var failGrade = GradeInfo{"F", 0.0, "Fail"}

// scoreResolution is the precision of stored scores; adjacent bands may be this far apart.
var scoreResolution = decimal.New(1, -2)

// DefaultClassify maps a score onto the built-in boundary table.
func DefaultClassify(score float64) GradeInfo {
	for _, band := range defaultTable {
		if score >= band.min {
			return band.info
		}
	}
	return failGrade
}

// DefaultScale renders the built-in table as grading bands.
func DefaultScale() []models.GradeBand {
	bands := make([]models.GradeBand, 0, len(defaultTable)+1)
	upper := 100.0
	for _, band := range defaultTable {
		point := band.info.Point
		bands = append(bands, models.GradeBand{
			Grade:       band.info.Grade,
			MinScore:    band.min,
			MaxScore:    upper,
			Description: band.info.Remark,
			GradePoint:  &point,
		})
		upper = Round2(band.min - 0.01)
	}
	zero := 0.0
	bands = append(bands, models.GradeBand{Grade: failGrade.Grade, MinScore: 0, MaxScore: upper, Description: failGrade.Remark, GradePoint: &zero})
	return bands
}

func defaultPoint(grade string) (float64, bool) {
	grade = strings.TrimSpace(strings.ToUpper(grade))
	for _, band := range defaultTable {
		if band.info.Grade == grade {
			return band.info.Point, true
		}
	}
	if grade == failGrade.Grade {
		return failGrade.Point, true
	}
	return 0, false
}

// Classifier maps scores onto a school's custom scale, or the default table when the school
// has none.
type Classifier struct {
	bands []models.GradeBand
}

// NewClassifier builds a classifier for the given scale. An empty scale selects the default
// table.
func NewClassifier(scale []models.GradeBand) *Classifier {
	if len(scale) == 0 {
		return &Classifier{}
	}
	bands := make([]models.GradeBand, len(scale))
	copy(bands, scale)
	sort.SliceStable(bands, func(i, j int) bool { return bands[i].MinScore > bands[j].MinScore })
	return &Classifier{bands: bands}
}

// Custom reports whether a school scale is in effect.
func (c *Classifier) Custom() bool {
	return c != nil && len(c.bands) > 0
}

// Classify returns the grade, point and remark for a score. With a custom scale the band
// containing the score is selected (a shared endpoint resolves to the higher band); a score
// outside every band is a configuration error.
func (c *Classifier) Classify(score float64) (GradeInfo, error) {
	if !c.Custom() {
		return DefaultClassify(score), nil
	}
	for _, band := range c.bands {
		if score >= band.MinScore && score <= band.MaxScore {
			info := GradeInfo{Grade: band.Grade, Remark: band.Description}
			if band.GradePoint != nil {
				info.Point = *band.GradePoint
			} else if point, ok := defaultPoint(band.Grade); ok {
				info.Point = point
			}
			return info, nil
		}
	}
	return GradeInfo{}, appErrors.Clone(appErrors.ErrConfiguration, fmt.Sprintf("no grading band covers score %.2f", score))
}

// ValidateScale checks that a custom scale is contiguous, non-overlapping and covers [0,100].
// Adjacent bands may share an endpoint or sit one score step (0.01) apart.
func ValidateScale(scale []models.GradeBand) error {
	if len(scale) == 0 {
		return nil
	}
	for _, band := range scale {
		if err := validate.Struct(band); err != nil {
			return appErrors.Wrap(err, appErrors.ErrConfiguration.Code, appErrors.ErrConfiguration.Status, fmt.Sprintf("invalid band %q", band.Grade))
		}
	}
	bands := make([]models.GradeBand, len(scale))
	copy(bands, scale)
	sort.SliceStable(bands, func(i, j int) bool { return bands[i].MinScore < bands[j].MinScore })

	if bands[0].MinScore != 0 {
		return appErrors.Clone(appErrors.ErrConfiguration, "grading scale must start at 0")
	}
	if bands[len(bands)-1].MaxScore != 100 {
		return appErrors.Clone(appErrors.ErrConfiguration, "grading scale must end at 100")
	}
	for i := 1; i < len(bands); i++ {
		prev, cur := bands[i-1], bands[i]
		gap := decimal.NewFromFloat(cur.MinScore).Sub(decimal.NewFromFloat(prev.MaxScore))
		if gap.IsNegative() {
			return appErrors.Clone(appErrors.ErrConfiguration, fmt.Sprintf("bands %q and %q overlap", prev.Grade, cur.Grade))
		}
		if gap.GreaterThan(scoreResolution) {
			return appErrors.Clone(appErrors.ErrConfiguration, fmt.Sprintf("gap between bands %q and %q", prev.Grade, cur.Grade))
		}
	}
	return nil
}

package query

import (
	"fmt"

	"github.com/tmwangi/kitabu/internal/model"
)

// Bucket enums per filter field. Each field is either unconstrained (the
// zero value, "any") or pinned to exactly one numeric range. Using closed
// enums instead of free-form keys means an unknown bucket is a parse error
// at the edge, not a silent match-everything fallthrough.

// StudentsBucket classifies a course by enrolled student count
type StudentsBucket int

const (
	StudentsAny StudentsBucket = iota
	StudentsLt500
	Students500To2000
	Students2000To10000
	StudentsGt10000
)

// DurationBucket classifies a course by total hours
type DurationBucket int

const (
	DurationAny DurationBucket = iota
	DurationLt5
	Duration5To10
	Duration10To20
	DurationGt20
)

// PriceBucket classifies a course by price
type PriceBucket int

const (
	PriceAny PriceBucket = iota
	PriceFree
	PriceLt50
	Price50To100
	Price100To200
	PriceGt200
)

// RatingBucket is a minimum-rating threshold
type RatingBucket int

const (
	RatingAny RatingBucket = iota
	RatingGte35
	RatingGte40
	RatingGte45
)

// The boundary inclusions below are uneven on purpose: 500_2000 keeps both
// endpoints while 2000_10000 drops its lower one (and likewise for
// duration and price). That is the observed production behavior at exact
// boundary values, so it is reproduced literally rather than normalized.

// Matches reports whether a student count falls in the bucket
func (b StudentsBucket) Matches(v int) bool {
	switch b {
	case StudentsLt500:
		return v < 500
	case Students500To2000:
		return v >= 500 && v <= 2000
	case Students2000To10000:
		return v > 2000 && v <= 10000
	case StudentsGt10000:
		return v > 10000
	default:
		return true
	}
}

// Matches reports whether a duration in hours falls in the bucket
func (b DurationBucket) Matches(v float64) bool {
	switch b {
	case DurationLt5:
		return v < 5
	case Duration5To10:
		return v >= 5 && v <= 10
	case Duration10To20:
		return v > 10 && v <= 20
	case DurationGt20:
		return v > 20
	default:
		return true
	}
}

// Matches reports whether a price falls in the bucket
func (b PriceBucket) Matches(v float64) bool {
	switch b {
	case PriceFree:
		return v == 0
	case PriceLt50:
		return v > 0 && v < 50
	case Price50To100:
		return v >= 50 && v <= 100
	case Price100To200:
		return v > 100 && v <= 200
	case PriceGt200:
		return v > 200
	default:
		return true
	}
}

// Matches reports whether a rating clears the bucket's threshold
func (b RatingBucket) Matches(v float64) bool {
	switch b {
	case RatingGte35:
		return v >= 3.5
	case RatingGte40:
		return v >= 4.0
	case RatingGte45:
		return v >= 4.5
	default:
		return true
	}
}

func (b StudentsBucket) String() string {
	switch b {
	case StudentsLt500:
		return "lt500"
	case Students500To2000:
		return "500_2000"
	case Students2000To10000:
		return "2000_10000"
	case StudentsGt10000:
		return "gt10000"
	default:
		return "any"
	}
}

func (b DurationBucket) String() string {
	switch b {
	case DurationLt5:
		return "lt5"
	case Duration5To10:
		return "5_10"
	case Duration10To20:
		return "10_20"
	case DurationGt20:
		return "gt20"
	default:
		return "any"
	}
}

func (b PriceBucket) String() string {
	switch b {
	case PriceFree:
		return "free"
	case PriceLt50:
		return "lt50"
	case Price50To100:
		return "50_100"
	case Price100To200:
		return "100_200"
	case PriceGt200:
		return "gt200"
	default:
		return "any"
	}
}

func (b RatingBucket) String() string {
	switch b {
	case RatingGte35:
		return "gte35"
	case RatingGte40:
		return "gte40"
	case RatingGte45:
		return "gte45"
	default:
		return "any"
	}
}

// ParseStudentsBucket parses a bucket key like "lt500" or "any"
func ParseStudentsBucket(s string) (StudentsBucket, error) {
	switch s {
	case "", "any":
		return StudentsAny, nil
	case "lt500":
		return StudentsLt500, nil
	case "500_2000":
		return Students500To2000, nil
	case "2000_10000":
		return Students2000To10000, nil
	case "gt10000":
		return StudentsGt10000, nil
	}
	return StudentsAny, fmt.Errorf("unknown students bucket %q", s)
}

// ParseDurationBucket parses a bucket key like "5_10" or "any"
func ParseDurationBucket(s string) (DurationBucket, error) {
	switch s {
	case "", "any":
		return DurationAny, nil
	case "lt5":
		return DurationLt5, nil
	case "5_10":
		return Duration5To10, nil
	case "10_20":
		return Duration10To20, nil
	case "gt20":
		return DurationGt20, nil
	}
	return DurationAny, fmt.Errorf("unknown duration bucket %q", s)
}

// ParsePriceBucket parses a bucket key like "free" or "any"
func ParsePriceBucket(s string) (PriceBucket, error) {
	switch s {
	case "", "any":
		return PriceAny, nil
	case "free":
		return PriceFree, nil
	case "lt50":
		return PriceLt50, nil
	case "50_100":
		return Price50To100, nil
	case "100_200":
		return Price100To200, nil
	case "gt200":
		return PriceGt200, nil
	}
	return PriceAny, fmt.Errorf("unknown price bucket %q", s)
}

// ParseRatingBucket parses a bucket key like "gte45" or "any"
func ParseRatingBucket(s string) (RatingBucket, error) {
	switch s {
	case "", "any":
		return RatingAny, nil
	case "gte35":
		return RatingGte35, nil
	case "gte40":
		return RatingGte40, nil
	case "gte45":
		return RatingGte45, nil
	}
	return RatingAny, fmt.Errorf("unknown rating bucket %q", s)
}

// Filters is the categorical filter state. The zero value means "no
// constraint on any field", so reset is just Filters{}.
type Filters struct {
	Students StudentsBucket
	Duration DurationBucket
	Price    PriceBucket
	Rating   RatingBucket
}

// IsZero reports whether no field is constrained
func (f Filters) IsZero() bool {
	return f == Filters{}
}

// Match reports whether a course passes all four bucket predicates
func (f Filters) Match(c model.Course) bool {
	return f.Students.Matches(c.Students) &&
		f.Duration.Matches(c.Duration) &&
		f.Price.Matches(c.Price) &&
		f.Rating.Matches(c.Rating)
}

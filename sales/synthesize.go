package sales

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

const (
	// MinQuantity is the smallest quantity a synthetic sale is created with.
	MinQuantity = 1

	// MaxQuantity is the largest quantity a synthetic sale is created with.
	MaxQuantity = 5

	// PendingThreshold and ConfirmedThreshold encode the status mix: 70% PENDING, 25% CONFIRMED, 5% CANCELLED.
	// Downstream capacity tests depend on these proportions.
	PendingThreshold   = 0.70
	ConfirmedThreshold = 0.95
)

// RandomSource produces uniformly distributed values in [0,1).
// *rand.Rand from math/rand and math/rand/v2 both satisfy it.
type RandomSource interface {
	Float64() float64
}

// Synthesize fabricates one sale from the given reference data.
//
// The entities are sampled independently and uniformly with replacement, the quantity is uniform in
// [MinQuantity, MaxQuantity], the unit price is copied from the chosen product, and the status is drawn
// from the fixed categorical distribution. The draw order is product, salesman, store, quantity, status.
//
// It fails with ErrEmptyReferenceSet if any of the three reference sets is empty; nothing is drawn then.
func Synthesize(products []Product, salesmen []Salesman, stores []Store, rng RandomSource) (SyntheticSale, error) {
	if err := guardReferenceSets(products, salesmen, stores); err != nil {
		return SyntheticSale{}, err
	}

	product := products[randomIndex(len(products), rng)]
	salesman := salesmen[randomIndex(len(salesmen), rng)]
	store := stores[randomIndex(len(stores), rng)]

	quantity := RandomIntInRange(MinQuantity, MaxQuantity, rng)
	unitPrice := product.BasePrice

	return SyntheticSale{
		ProductID:   product.ID,
		SalesmanID:  salesman.ID,
		StoreID:     store.ID,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		TotalAmount: unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
		Status:      RandomStatus(rng),
	}, nil
}

// SynthesizeFromSnapshot is Synthesize for a ReferenceSnapshot.
func SynthesizeFromSnapshot(snapshot ReferenceSnapshot, rng RandomSource) (SyntheticSale, error) {
	return Synthesize(snapshot.Products, snapshot.Salesmen, snapshot.Stores, rng)
}

// RandomIntInRange returns a uniformly distributed integer in the closed range [lower, upper]
// computed as floor(u * (upper-lower+1)) + lower.
func RandomIntInRange(lower, upper int, rng RandomSource) int {
	return int(math.Floor(rng.Float64()*float64(upper-lower+1))) + lower
}

// RandomStatus draws a status: u < 0.70 is PENDING, 0.70 <= u < 0.95 is CONFIRMED, everything else CANCELLED.
func RandomStatus(rng RandomSource) Status {
	return StatusForDraw(rng.Float64())
}

// StatusForDraw maps a single draw u in [0,1) onto the status threshold ladder.
func StatusForDraw(u float64) Status {
	switch {
	case u < PendingThreshold:
		return StatusPending
	case u < ConfirmedThreshold:
		return StatusConfirmed
	default:
		return StatusCancelled
	}
}

func randomIndex(length int, rng RandomSource) int {
	return int(math.Floor(rng.Float64() * float64(length)))
}

func guardReferenceSets(products []Product, salesmen []Salesman, stores []Store) error {
	var errs []error

	if len(products) == 0 {
		errs = append(errs, fmt.Errorf("%w: products", ErrEmptyReferenceSet))
	}

	if len(salesmen) == 0 {
		errs = append(errs, fmt.Errorf("%w: salesmen", ErrEmptyReferenceSet))
	}

	if len(stores) == 0 {
		errs = append(errs, fmt.Errorf("%w: stores", ErrEmptyReferenceSet))
	}

	return errors.Join(errs...)
}

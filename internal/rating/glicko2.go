// internal/rating/glicko2.go
package rating

import "math"

const (
	// GlickoScale converts between the display scale and Glicko-2's internal scale.
	GlickoScale = 173.7178
	// DefaultRating is the rating of a seat that has not finished a game yet.
	DefaultRating = 1500.0
	// DefaultDeviation is the starting rating deviation.
	DefaultDeviation = 350.0
	// DefaultVolatility is the starting volatility.
	DefaultVolatility = 0.06
	// Tau constrains how fast volatility may change.
	Tau = 0.5
	// Epsilon is the convergence tolerance of the volatility iteration.
	Epsilon = 0.000001
)

// Rating is a Glicko-2 rating on the display scale.
type Rating struct {
	Value      float64 `json:"rating"`
	Deviation  float64 `json:"deviation"`
	Volatility float64 `json:"volatility"`
}

// Default is the rating every seat starts from.
func Default() Rating {
	return Rating{Value: DefaultRating, Deviation: DefaultDeviation, Volatility: DefaultVolatility}
}

func (r Rating) mu() float64  { return (r.Value - DefaultRating) / GlickoScale }
func (r Rating) phi() float64 { return r.Deviation / GlickoScale }

// Update rates one result of r against opp. score is 1 for a win, 0 for a
// loss and anything between for a partial result.
func Update(r, opp Rating, score float64) Rating {
	mu, phi, sigma := r.mu(), r.phi(), r.Volatility
	gOpp := g(opp.phi())
	e := expected(mu, opp.mu(), opp.phi())

	v := 1.0 / (gOpp * gOpp * e * (1 - e))
	delta := v * gOpp * (score - e)

	newSigma := volatility(phi, sigma, v, delta)
	phiStar := math.Sqrt(phi*phi + newSigma*newSigma)
	newPhi := 1.0 / math.Sqrt(1.0/(phiStar*phiStar)+1.0/v)
	newMu := mu + newPhi*newPhi*gOpp*(score-e)

	return Rating{
		Value:      newMu*GlickoScale + DefaultRating,
		Deviation:  newPhi * GlickoScale,
		Volatility: newSigma,
	}
}

// volatility solves for the new sigma with the Illinois variant of regula falsi.
func volatility(phi, sigma, v, delta float64) float64 {
	a := math.Log(sigma * sigma)
	f := func(x float64) float64 {
		ex := math.Exp(x)
		den := phi*phi + v + ex
		return ex*(delta*delta-phi*phi-v-ex)/(2*den*den) - (x-a)/(Tau*Tau)
	}

	A := a
	var B float64
	if delta*delta > phi*phi+v {
		B = math.Log(delta*delta - phi*phi - v)
	} else {
		k := 1.0
		for f(a-k*Tau) < 0 {
			k++
		}
		B = a - k*Tau
	}

	fA, fB := f(A), f(B)
	for i := 0; i < 100 && math.Abs(B-A) > Epsilon; i++ {
		C := A + (A-B)*fA/(fB-fA)
		fC := f(C)
		if fC*fB <= 0 {
			A, fA = B, fB
		} else {
			fA /= 2
		}
		B, fB = C, fC
	}
	return math.Exp(A / 2)
}

func g(phi float64) float64 {
	return 1.0 / math.Sqrt(1.0+3.0*phi*phi/(math.Pi*math.Pi))
}

func expected(mu, oppMu, oppPhi float64) float64 {
	return 1.0 / (1.0 + math.Exp(-g(oppPhi)*(mu-oppMu)))
}

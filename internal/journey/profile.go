package journey

import "math/rand"

// Profile is the customer identity a virtual user carries for its lifetime.
// It is assigned once per worker and never mutated afterwards.
type Profile struct {
	Name       string
	Email      string
	Segment    string
	DeviceType string
	Location   string
}

// Demo customer catalog. Names and emails pair up by index.
var customerNames = []string{
	"Sarah Johnson", "Michael Chen", "Emma Rodriguez", "David Kim",
	"Ashley Thompson", "Robert Martinez", "Jennifer Lee", "Christopher Brown",
	"Amanda Wilson", "Joshua Garcia", "Melissa Davis", "Andrew Miller",
	"Jessica Anderson", "Kevin Taylor", "Lauren Thomas", "Brian Jackson",
}

var customerEmails = []string{
	"sarah.johnson@email.com", "michael.chen@email.com", "emma.rodriguez@email.com",
	"david.kim@email.com", "ashley.thompson@email.com", "robert.martinez@email.com",
	"jennifer.lee@email.com", "christopher.brown@email.com", "amanda.wilson@email.com",
	"joshua.garcia@email.com", "melissa.davis@email.com", "andrew.miller@email.com",
	"jessica.anderson@email.com", "kevin.taylor@email.com", "lauren.thomas@email.com",
	"brian.jackson@email.com",
}

var customerSegments = []string{
	"Premium", "Standard", "Budget", "Enterprise", "SMB", "Startup",
}

var trafficSources = []string{
	"Google_Ads", "Facebook_Campaign", "Email_Newsletter", "Direct_Traffic",
	"Referral_Partner", "Organic_Search", "Social_Media", "Content_Marketing",
}

const (
	defaultDeviceType = "desktop"
	defaultLocation   = "US-East"
)

// WorkerRand returns the pseudorandom stream for one worker, seeded from the
// run seed and the worker ID so test runs can be replayed deterministically.
func WorkerRand(runSeed int64, workerID int) *rand.Rand {
	return rand.New(rand.NewSource(runSeed + int64(workerID)))
}

// DrawProfile draws a customer profile from the catalog using the worker's
// random stream.
func DrawProfile(rng *rand.Rand) Profile {
	idx := rng.Intn(len(customerNames))
	return Profile{
		Name:       customerNames[idx],
		Email:      customerEmails[idx],
		Segment:    customerSegments[rng.Intn(len(customerSegments))],
		DeviceType: defaultDeviceType,
		Location:   defaultLocation,
	}
}

// DrawTrafficSource draws a traffic source from the catalog.
func DrawTrafficSource(rng *rand.Rand) string {
	return trafficSources[rng.Intn(len(trafficSources))]
}

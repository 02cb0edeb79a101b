package types

// Status is the activation state of a provider or subscriber
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Provider is an exchange-rate API provider
type Provider struct {
	ID           string `json:"id,omitempty" yaml:"id,omitempty"`
	Name         string `json:"name" yaml:"name" validate:"required,min=3,max=50"`
	APIKey       string `json:"apiKey" yaml:"apiKey" validate:"required,min=10"`
	APIURL       string `json:"apiUrl" yaml:"apiUrl" validate:"required,url"`
	Status       Status `json:"status" yaml:"status" validate:"required,oneof=active inactive"`
	Description  string `json:"description,omitempty" yaml:"description,omitempty" validate:"max=200"`
	RateLimit    int    `json:"rateLimit" yaml:"rateLimit" validate:"required,min=1,max=10000"`
	Timeout      int    `json:"timeout" yaml:"timeout" validate:"required,min=1,max=60"`
	LastSync     string `json:"lastSync,omitempty" yaml:"lastSync,omitempty"`
	RequestCount int    `json:"requestCount" yaml:"requestCount"`
}

// NewProvider returns a provider with the form defaults
func NewProvider() Provider {
	return Provider{
		Status:    StatusActive,
		RateLimit: 100,
		Timeout:   30,
	}
}

// Subscriber is a consumer of exchange-rate data
type Subscriber struct {
	ID           string `json:"id" yaml:"id" validate:"required"`
	Name         string `json:"name" yaml:"name" validate:"required"`
	APIKey       string `json:"apiKey" yaml:"apiKey"`
	Status       Status `json:"status" yaml:"status" validate:"omitempty,oneof=active inactive"`
	LastSync     string `json:"lastSync,omitempty" yaml:"lastSync,omitempty"`
	RequestCount int    `json:"requestCount" yaml:"requestCount"`
}

// ActivityEntry is one line of the local recent-activity feed
type ActivityEntry struct {
	ID        string `json:"id" yaml:"id"`
	Timestamp string `json:"timestamp" yaml:"timestamp"`
	Kind      string `json:"kind" yaml:"kind"`
	Subject   string `json:"subject" yaml:"subject"`
	Detail    string `json:"detail,omitempty" yaml:"detail,omitempty"`
}

package orders

// Order status is a free-form label: any string may replace any other, and no
// transition graph is enforced. The constants below are the values the admin
// UI offers, nothing more.

const (
	StatusSubmitted  = "Submitted"
	StatusProcessing = "Processing"
	StatusShipped    = "Shipped"
	StatusCompleted  = "Completed"
	StatusCancelled  = "Cancelled"
)

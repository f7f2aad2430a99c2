package mail

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	NotifyTo string
}

type NewLeadEmailData struct {
	Email         string
	FirstName     string
	LastName      string
	CompanyName   string
	JobTitle      string
	LinkedInURL   string
	TwitterHandle string
	Provider      string
	EnrichedAt    string
}

package directus

type contactPayload struct {
	Email       string `json:"email"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	JobTitle    string `json:"job_title,omitempty"`
	CompanyName string `json:"company_name,omitempty"`
	LinkedInURL string `json:"linkedin_url,omitempty"`
	Twitter     string `json:"twitter_handle,omitempty"`
	Source      string `json:"source,omitempty"`
}

type itemRef struct {
	ID any `json:"id"`
}

type listResponse struct {
	Data []itemRef `json:"data"`
}

type itemResponse struct {
	Data itemRef `json:"data"`
}

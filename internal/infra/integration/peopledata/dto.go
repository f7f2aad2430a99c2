package peopledata

type enrichResponse struct {
	Status     int        `json:"status"`
	Likelihood int        `json:"likelihood"`
	Data       personData `json:"data"`
}

type personData struct {
	FullName        string `json:"full_name"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	JobTitle        string `json:"job_title"`
	JobCompanyName  string `json:"job_company_name"`
	LinkedInURL     string `json:"linkedin_url"`
	LinkedInUser    string `json:"linkedin_username"`
	TwitterUsername string `json:"twitter_username"`
}

type errorResponse struct {
	Status int `json:"status"`
	Error  struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

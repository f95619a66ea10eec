package response

type ProbeEmailResponse struct {
	Branch string `json:"branch"`
}

package email

// PreviewData contains sample template data for local preview and for
// the template rendering tests. It maps
//
//	templateName -> (templateVariableName -> exampleValue)
var PreviewData = map[string]map[string]string{
	"welcome": {
		"UserFirstName": "John",
	},
	"password_reset": {
		"UserFirstName": "John",
		"ResetURL":      "https://trailbook.example/reset-password/0123abcd",
		"ValidMinutes":  "10",
	},
}

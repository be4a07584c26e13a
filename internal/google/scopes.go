package google

// DefaultOAuthScopes are the Google OAuth scopes the scheduling engine
// requires. Only calendar access is requested; the engine never reads mail,
// documents or contacts.
//
// The scopes provide access to:
//   - OpenID Connect user info (account identification)
//   - Google Calendar: read busy intervals, create booking events
var DefaultOAuthScopes = []string{
	"openid",
	"https://www.googleapis.com/auth/userinfo.email",

	"https://www.googleapis.com/auth/calendar.events",
}

// Package server provides the small HTTP stack behind `favsync auth spotify`.
//
// [BasicRouter] implements [Router] on [http.ServeMux] method patterns with [Middleware] support.
// [OAuthHandler] serves the OAuth2 authorization code callback: it checks the state parameter,
// exchanges the code through an [ExchangeFunc], and delivers exactly one [OAuthResult].
// [WaitForCallback] runs a temporary server on the configured address until that result arrives.
package server

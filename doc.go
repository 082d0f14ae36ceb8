// Package graw is a small client for the Reddit REST API.
//
// # Overview
//
// A Client starts anonymous and reads public listings through www.reddit.com.
// Logging in with the password grant of a "script" app yields a bearer token;
// from then on requests go to oauth.reddit.com with that token attached.
//
// Facades group the endpoints:
//
//   - Subreddit: about, moderators, hot/rising/top/new, comments
//   - User: a user's overview, posts, comments and profile
//   - Me: submitting, commenting, messaging and the logged-in user's history
//
// # Sessions
//
// A session is a value. Every facade copies the session it was created from,
// so logging in later never upgrades an existing facade:
//
//	client, err := graw.NewClient(&graw.Config{
//		ClientID:     "your-client-id",
//		ClientSecret: "your-client-secret",
//		Username:     "your-username",
//		Password:     "your-password",
//		UserAgent:    "script:myapp:1.0 (by /u/yourusername)",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	anon, _ := client.AuthSubreddit("golang")  // anonymous for its whole life
//	authed, err := client.ClientLogin(ctx)     // a new, authenticated Client
//	sub, _ := authed.AuthSubreddit("golang")   // uses the bearer token
//
// # Pagination
//
// Every listing takes a *types.ListingCursor. Zero fields are not sent, so a
// nil cursor and an empty one are the same request:
//
//	page, err := sub.Top(ctx, &types.ListingCursor{Limit: 25, Period: types.PeriodWeek})
//	next, err := sub.Top(ctx, &types.ListingCursor{Limit: 25, Period: types.PeriodWeek, After: page.After()})
//
// PostIterator chains the pages for you and can be paced with a
// golang.org/x/time/rate limiter. The client never retries and never
// throttles on its own.
//
// # Comments
//
// The comments endpoint answers with a single listing for a subreddit's
// comment stream and with [post, comments] for one post. LatestComments and
// ArticleComments both return the same *types.CommentListing; NewCommentTree
// offers flattening, search and "more" stub collection on top of it.
//
// # Errors
//
// All errors are typed structs from pkg/errors and work with errors.As:
//
//   - MissingCredentialsError: login attempted without username or password
//   - AuthError: the token endpoint answered 200 with an error body
//   - StatusError: any 4xx/5xx, with the status and body
//   - TransportError: the request never produced a response
//   - ParseError: the body did not decode
//   - ConfigError: bad configuration or arguments, caught before any request
//
// errors.Envelope converts any of them into a go-errors value with a
// category, HTTP-style code and text code for structured output.
package graw

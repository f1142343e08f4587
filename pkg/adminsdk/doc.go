/*
Package adminsdk is the wire contract of the blog admin API plus a small Go
client for it.

Every JSON response uses the same envelope:

	{"code": 200, "message": "ok", "data": {...}}

where code mirrors the HTTP status. Errors carry no data.

Typical use:

	client := adminsdk.NewClient("https://admin.example.com")

	login, err := client.Login(ctx, adminsdk.LoginRequest{Username: "admin", Password: pw})
	if err != nil {
		return err
	}

	info, err := client.Info(ctx)

Login stores the returned token on the client; subsequent calls send it as
a bearer credential. Errors returned by the client are *Error values and can
be inspected with IsUnauthorized and IsForbidden.
*/
package adminsdk

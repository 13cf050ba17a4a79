// Package harness is a fluent given/when/then facade for contract tests.
//
//	h := harness.New(nil, reqres)
//	token := h.Given().
//		Body(map[string]string{"email": "eve.holt@reqres.in", "password": "cityslicka"}).
//		Post(ctx, "/login").
//		Then(t).
//		StatusCode(200).
//		Body("token", assertions.NotNull()).
//		Extract().
//		String("token")
//
// Then reports the first failed expectation to the test and stops it.
// Validate collects it instead, for use outside tests.
package harness

// Package unleash is the main package for the feature toggle client.
//
// A Client keeps an in-memory copy of the feature toggle definitions published by an Unleash
// server, refreshes it in the background, and evaluates toggles locally:
//
//	client, err := unleash.NewClient(unleash.Config{
//		AppName: "checkout-service",
//		URL:     "https://unleash.example.com/api",
//		CustomHeaders: map[string]string{"Authorization": apiToken},
//	})
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	if client.IsEnabled("new-checkout", unleash.WithContext(model.Context{UserID: "123"})) {
//		...
//	}
//
// Evaluation never performs I/O and never returns an error. Until the first definitions arrive,
// from the backup file, a bootstrap provider or the server, every toggle is treated as undefined.
package unleash

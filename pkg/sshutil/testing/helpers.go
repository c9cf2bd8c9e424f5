package testing

// WithFiles pre-populates the mock filesystem with files.
// Keys are paths, values are file contents.
func WithFiles(client *MockClient, files map[string]string) {
	for p, content := range files {
		_ = client.GetFS().WriteFile(p, []byte(content))
	}
}

// WithDirs pre-populates the mock filesystem with directories.
func WithDirs(client *MockClient, dirs []string) {
	for _, dir := range dirs {
		_ = client.GetFS().MkdirAll(dir)
	}
}

// WithResponses registers canned responses keyed by exact command or regex.
func WithResponses(client *MockClient, responses map[string]CommandResponse) {
	for pattern, resp := range responses {
		client.SetCommandResponse(pattern, resp)
	}
}

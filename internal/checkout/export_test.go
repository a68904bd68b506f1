package checkout

// SetExternalIDGenerator pins the otherwise-random external order id so
// tests can drive the duplicate-id branch.
func SetExternalIDGenerator(s *Service, gen func() string) {
	s.newExternalID = gen
}

package redisx

import "fmt"

const ns = "gigpass:v1"

func KeyEventSummary(eventID string) string {
	return fmt.Sprintf("%s:event:%s:summary", ns, eventID)
}

func KeyCatalogFacets() string {
	return ns + ":catalog:facets"
}

func KeyRefreshToken(hash string) string {
	return fmt.Sprintf("%s:auth:refresh:%s", ns, hash)
}

func ChannelCatalogChanged() string {
	return ns + ":catalog:changed"
}

func ChannelBookingRecorded() string {
	return ns + ":bookings:recorded"
}

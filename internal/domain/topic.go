package domain

import "fmt"

// Topic is one of the five theoretical exam areas of the
// Sportküstenschifferschein (SKS), per the official ELWIS Fragenkatalog.
type Topic string

const (
	TopicNavigation        Topic = "navigation"
	TopicSchifffahrtsrecht Topic = "schifffahrtsrecht"
	TopicWetterkunde       Topic = "wetterkunde"
	TopicSeemannschaftI    Topic = "seemannschaft_i"  // Antriebsmaschine und unter Segel
	TopicSeemannschaftII   Topic = "seemannschaft_ii" // nur Antriebsmaschine
)

// AllTopics returns the topics in their canonical enumeration order.
// This order also breaks ties when recommending a topic on the dashboard.
func AllTopics() []Topic {
	return []Topic{
		TopicNavigation,
		TopicSchifffahrtsrecht,
		TopicWetterkunde,
		TopicSeemannschaftI,
		TopicSeemannschaftII,
	}
}

var topicLabels = map[Topic]string{
	TopicNavigation:        "Navigation",
	TopicSchifffahrtsrecht: "Schifffahrtsrecht",
	TopicWetterkunde:       "Wetterkunde",
	TopicSeemannschaftI:    "Seemannschaft I",
	TopicSeemannschaftII:   "Seemannschaft II",
}

// Label returns the human-readable name of the topic.
func (t Topic) Label() string {
	return topicLabels[t]
}

// ParseTopic converts a raw string into a Topic.
func ParseTopic(raw string) (Topic, error) {
	t := Topic(raw)
	if _, ok := topicLabels[t]; !ok {
		return "", fmt.Errorf("unknown topic: %q", raw)
	}
	return t, nil
}

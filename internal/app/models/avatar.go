package models

import (
	"fmt"
	"math/rand"
)

var (
	avatarCollections = []string{"notionists-neutral", "adventurer-neutral", "fun-emoji"}
	avatarNames       = []string{
		"Garfield", "Tinkerbell", "Annie", "Loki", "Cleo", "Angel", "Bob", "Mia", "Coco", "Gracie",
		"Bear", "Bella", "Abby", "Harley", "Cali", "Leo", "Luna", "Jack", "Felix", "Kiki",
	}
)

// DefaultAvatarURL returns a generated avatar used until the user uploads a picture.
func DefaultAvatarURL() string {
	collection := avatarCollections[rand.Intn(len(avatarCollections))]
	name := avatarNames[rand.Intn(len(avatarNames))]
	return fmt.Sprintf("https://api.dicebear.com/6.x/%s/svg?seed=%s", collection, name)
}

package store

import "go.mongodb.org/mongo-driver/bson/primitive"

const AccessAdmin = "admin"

type Group struct {
	ID   string `bson:"_id"`
	Name string `bson:"name"`
}

type Permission struct {
	ID     string `bson:"_id"`
	Access string `bson:"access"`
}

type Project struct {
	ID          primitive.ObjectID `bson:"_id"`
	Label       string             `bson:"label"`
	Group       string             `bson:"group"`
	Permissions []Permission       `bson:"permissions"`
}

type User struct {
	ID        string `bson:"_id"`
	Firstname string `bson:"firstname"`
	Lastname  string `bson:"lastname"`
	Root      bool   `bson:"root"`
}

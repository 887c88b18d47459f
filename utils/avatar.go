package utils

import "github.com/mukhammadalimk/natours/entity"

// UserPhotoURL is the public path of a user's resized photo.
func UserPhotoURL(user *entity.User) string {
	if user == nil || user.Photo == "" {
		return "/img/users/default.jpg"
	}
	return "/img/users/" + user.Photo
}

func TourImageURL(name string) string {
	return "/img/tours/" + name
}

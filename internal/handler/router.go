package handler

import (
	"carlink/backend/internal/auth"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts every /api/v1 endpoint on the given group.
func RegisterRoutes(api *gin.RouterGroup) {
	// Public routes
	api.POST("/signup", Signup)
	api.POST("/login", Login)
	api.GET("/routes/get", GetRoutes)
	api.POST("/routes/search", SearchRoutes)
	api.GET("/cities/get", GetAllCities)

	// Authenticated routes
	authed := api.Group("")
	authed.Use(auth.AuthMiddleware())
	{
		authed.GET("/users/getByToken", GetUserByToken)
		authed.GET("/users/get", GetAllUsers)
		authed.GET("/users/search/:name", SearchUsers)
		authed.GET("/users/:id", GetUser)
		authed.PUT("/users/update/:userId", UpdateUser)
		authed.DELETE("/users/delete/:userId", DeleteUser)
		authed.POST("/users/car/attach", AttachCar)
		authed.PUT("/users/car/update", UpdateAttachedCar)

		authed.POST("/media/store", StoreMedia)

		authed.POST("/cities/store", StoreCity)
		authed.DELETE("/cities/delete/:cityId", DeleteCity)
		authed.PUT("/cities/update/:id", UpdateCity)
		authed.POST("/cities/:id", GetCity)

		authed.POST("/locations/store", StoreLocation)
		authed.DELETE("/locations/delete/:locationId", DeleteLocation)
		authed.GET("/locations/get/:cityId", GetAllLocations)
		authed.PUT("/locations/update/:id", UpdateLocation)

		authed.POST("/cars/store", StoreCar)
		authed.DELETE("/cars/delete/:carId", DeleteCar)
		authed.GET("/cars/get", GetAllCars)
		authed.PUT("/cars/update/:id", UpdateCar)

		authed.POST("/routes/add", AddRoute)
		authed.DELETE("/routes/delete/:id", DeleteRoute)
		authed.GET("/routes/user/:id", GetUserRoutes)
		authed.GET("/routes/:id", GetRoute)

		authed.POST("/reservations/create/:route", StoreReservation)
		authed.PUT("/reservations/update/:reservation", UpdateReservation)
		authed.GET("/reservations/received", GetReceivedRequests)
		authed.GET("/reservations/sent", GetSentRequests)
		authed.GET("/reservations/route/:routeId", GetRouteRequests)

		authed.GET("/messages/get/last", GetConversationsWithMessages)
		authed.POST("/messages/send/:recipient", SendMessage)
		authed.GET("/messages/get/:recipient/:type", GetConversation)
		authed.PUT("/messages/read/:recipient", MarkConversationAsRead)
		authed.DELETE("/messages/delete/:recipient", DeleteConversation)

		authed.POST("/messages/group/store", StoreGroup)
		authed.POST("/messages/group/send/:group", SendMessageToGroup)
		authed.GET("/members/get/:group", RetrieveAllGroupMembers)

		authed.POST("/friends/request/:user", SendFriendRequest)
		authed.PUT("/friends/accept/:user", AcceptFriendRequest)
		authed.DELETE("/friends/decline/:user", DeclineFriendRequest)
		authed.DELETE("/friends/cancel/:user", CancelFriendRequest)
		authed.DELETE("/friends/unfriend/:user", Unfriend)
		authed.GET("/friends/get/:user", GetFriends)
		authed.GET("/friends/requests/get", GetFriendRequests)

		authed.POST("/ratings/add/:user", AddRating)
		authed.PUT("/ratings/update/:user", UpdateRating)
		authed.DELETE("/ratings/delete/:user", DeleteRating)
		authed.GET("/ratings/get/:user", GetRatings)

		authed.POST("/reports/add/:user", AddReport)
		authed.DELETE("/reports/delete/:user", DeleteReport)
		authed.GET("/report/reasons/get", GetReportReasons)

		authed.POST("/suggestions/add", AddSuggestion)
		authed.DELETE("/suggestions/delete/:suggestion", DeleteSuggestion)
		authed.GET("/suggestions/get", GetSuggestions)

		authed.GET("/notifications/get", GetUserNotifications)

		authed.GET("/stream", Stream)

		// Admin moderation actions
		admin := authed.Group("")
		admin.Use(auth.AdminMiddleware())
		{
			admin.POST("/users/ban/:userId", BanUser)
			admin.DELETE("/users/ban/remove/:userId", RemoveBan)
		}
	}
}

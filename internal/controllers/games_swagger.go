package controllers

import _ "willplay/internal/models"

// SearchGames godoc
// @Summary      Search the local catalog
// @Description  Returns at most three locally stored games matching the name, best match first
// @Tags         games
// @Produce      json
// @Param        name  query     string  false  "Game name or its beginning"
// @Success      200   {object}  models.LookupResult[[]models.GameDetails]
// @Failure      500   {object}  models.LookupResult[[]models.GameDetails]
// @Router       /games/search [get]
func SearchGames() {}

// GetGameBySteamID godoc
// @Summary      Resolve a game by Steam app id
// @Description  Returns the local game when it exists, otherwise fetches it from Steam without storing it
// @Tags         games
// @Produce      json
// @Param        steamID  path      int  true  "Steam app id"
// @Success      200      {object}  models.LookupResult[models.GameDetails]
// @Failure      400      {object}  models.LookupResult[models.GameDetails]
// @Failure      404      {object}  models.LookupResult[models.GameDetails]
// @Failure      502      {object}  models.LookupResult[models.GameDetails]
// @Router       /games/steam/{steamID} [get]
func GetGameBySteamID() {}

// ResolveGameLink godoc
// @Summary      Resolve a Steam store link
// @Tags         games
// @Produce      json
// @Param        link  query     string  true  "https://store.steampowered.com/app/{id}/..."
// @Success      200   {object}  models.LookupResult[models.GameDetails]
// @Failure      400   {object}  models.LookupResult[models.GameDetails]
// @Failure      404   {object}  models.LookupResult[models.GameDetails]
// @Router       /games/resolve [get]
func ResolveGameLink() {}

// SuggestGames godoc
// @Summary      Search the Steam store
// @Description  Up to three Steam suggestions for games missing from the local catalog
// @Tags         games
// @Produce      json
// @Param        term  query     string  true  "Search term"
// @Success      200   {object}  models.LookupResult[[]models.Suggestion]
// @Failure      502   {object}  models.LookupResult[[]models.Suggestion]
// @Router       /games/suggest [get]
func SuggestGames() {}

// GetGameList godoc
// @Summary      Get the caller's list
// @Description  Entries grouped by status, high priority first
// @Tags         list
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  models.UserGameList
// @Failure      401  {string}  string
// @Router       /list [get]
func GetGameList() {}

// AddGameToList godoc
// @Summary      Add a game to the caller's list
// @Description  Creates the catalog game when needed. Re-adding a listed game updates its status and priority
// @Tags         list
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      controllers.AddToListRequest  true  "Game and placement"
// @Success      201      {object}  controllers.AddToListResponse
// @Failure      400      {string}  string
// @Failure      401      {string}  string
// @Router       /list [post]
func AddGameToList() {}

// RemoveGameFromList godoc
// @Summary      Remove an entry from the caller's list
// @Tags         list
// @Security     BearerAuth
// @Param        id   path      string  true  "List entry id"
// @Success      204
// @Failure      401  {string}  string
// @Failure      403  {string}  string
// @Failure      404  {string}  string
// @Router       /list/{id} [delete]
func RemoveGameFromList() {}

// ChangeGameStatus godoc
// @Summary      Move an entry to another status
// @Tags         list
// @Accept       json
// @Security     BearerAuth
// @Param        id       path  string                          true  "List entry id"
// @Param        request  body  controllers.ChangeStatusRequest  true  "New status"
// @Success      204
// @Failure      400  {string}  string
// @Failure      403  {string}  string
// @Router       /list/{id}/status [patch]
func ChangeGameStatus() {}

// ChangeGamePriority godoc
// @Summary      Change the priority of an entry
// @Tags         list
// @Accept       json
// @Security     BearerAuth
// @Param        id       path  string                            true  "List entry id"
// @Param        request  body  controllers.ChangePriorityRequest  true  "New priority"
// @Success      204
// @Failure      400  {string}  string
// @Failure      403  {string}  string
// @Router       /list/{id}/priority [patch]
func ChangeGamePriority() {}

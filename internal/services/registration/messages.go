package registration

import "fmt"

// NoLinkAvailable is sent in place of an invite link when the session's
// country is missing from the country table
const NoLinkAvailable = "No link available"

const (
	detailsExample = "Username: Player123\nUID: 1234567890\nLevel:350"

	countryRepromptText = "Please select your country using the buttons below:"

	rulesText = "Thank you for providing your details!\n\nHere are the tournament rules:\n" +
		"1. Respect all participants.\n" +
		"2. No cheating or using exploits.\n" +
		"3. Follow the organizers' instructions.\n\n" +
		"Type 'agree' to accept the rules and continue."

	formatErrorText = "Invalid format. Please use the format:\n" + detailsExample

	agreeReminderText = "You must type 'agree' to continue."
)

func welcomeText(tournament string) string {
	return fmt.Sprintf("Welcome to the %s!\nPlease select your country:", tournament)
}

func detailsPromptText(country string) string {
	return fmt.Sprintf("You selected: %s\n\nPlease enter your username and Call of Duty UID.\nExample:\n%s", country, detailsExample)
}

func inviteText(link string) string {
	return fmt.Sprintf("Thank you for agreeing to the rules!\nHere is your private group link:\n%s", link)
}

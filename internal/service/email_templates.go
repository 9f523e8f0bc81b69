package service

import "fmt"

func newWishEmailTemplate(guest, message string, hasVideo bool, moderateURL, appName string) (string, string) {
	subject := fmt.Sprintf("New wish from %s", guest)

	video := "no video"
	if hasVideo {
		video = "with a video message"
	}

	body := fmt.Sprintf(`%s left a new wish (%s):

"%s"

It stays hidden until you approve it:
%s

%s`, guest, video, message, moderateURL, appName)

	return subject, body
}

func adminWelcomeEmailTemplate(loginURL, appName string) (string, string) {
	subject := fmt.Sprintf("You can now moderate %s", appName)
	body := fmt.Sprintf(`You were added as an administrator.

Sign in to approve wishes and manage the gallery:
%s

If you weren't expecting this, you can ignore this email.

%s`, loginURL, appName)

	return subject, body
}

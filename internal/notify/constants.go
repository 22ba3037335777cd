package notify

// AppName is the application name used in notifications.
const AppName = "ZuidWest FM FFmpeg Path Manager"

package logic

import (
	"fmt"

	"github.com/avct/uasurfer"

	"github.com/ewhitmore/geotune/internal/models"
)

// DescribeClient parses a raw User-Agent string into a ClientInfo using the
// uasurfer library.
func DescribeClient(uaString string) models.ClientInfo {
	u := uasurfer.Parse(uaString)

	var deviceType string
	switch u.DeviceType {
	case uasurfer.DeviceComputer:
		deviceType = "desktop"
	case uasurfer.DevicePhone:
		deviceType = "mobile"
	case uasurfer.DeviceTablet:
		deviceType = "tablet"
	default:
		deviceType = "other"
	}

	v := u.OS.Version
	osName := fmt.Sprintf("%s %s %d.%d.%d", u.OS.Platform.String(), u.OS.Name.String(), v.Major, v.Minor, v.Patch)

	return models.ClientInfo{
		DeviceType: deviceType,
		OS:         osName,
		IsBot:      u.IsBot(),
	}
}

package models

type DashboardSummary struct {
	TotalCustomers int64  `json:"totalCustomers"`
	TotalRooms     int64  `json:"totalRooms"`
	AvailableRooms int64  `json:"availableRooms"`
	OccupancyRate  string `json:"occupancyRate"`
}

type TodayStats struct {
	Bookings       int64   `json:"bookings"`
	ActiveBookings int64   `json:"activeBookings"`
	Orders         int64   `json:"orders"`
	Revenue        float64 `json:"revenue"`
}

type PopularProduct struct {
	ProductID     string  `json:"productId" bson:"_id"`
	ProductName   string  `json:"productName" bson:"productName"`
	TotalQuantity int     `json:"totalQuantity" bson:"totalQuantity"`
	TotalRevenue  float64 `json:"totalRevenue" bson:"totalRevenue"`
}

type RoomUtilization struct {
	RoomID       string  `json:"roomId" bson:"_id"`
	BookingCount int     `json:"bookingCount" bson:"bookingCount"`
	TotalHours   float64 `json:"totalHours" bson:"totalHours"`
}

type Dashboard struct {
	Summary         DashboardSummary  `json:"summary"`
	Today           TodayStats        `json:"today"`
	PopularProducts []PopularProduct  `json:"popularProducts"`
	RoomUtilization []RoomUtilization `json:"roomUtilization"`
	RecentBookings  []RecentBooking   `json:"recentBookings"`
	Rooms           []Room            `json:"rooms"`
}

type AllDataStats struct {
	TotalCustomers   int `json:"totalCustomers"`
	TotalRooms       int `json:"totalRooms"`
	AvailableRooms   int `json:"availableRooms"`
	TotalBookings    int `json:"totalBookings"`
	ActiveBookings   int `json:"activeBookings"`
	TotalProducts    int `json:"totalProducts"`
	TotalOrders      int `json:"totalOrders"`
	TotalMemberships int `json:"totalMemberships"`
}

type AllData struct {
	Customers   []Customer   `json:"customers"`
	Rooms       []Room       `json:"rooms"`
	Bookings    []Booking    `json:"bookings"`
	Products    []Product    `json:"products"`
	Orders      []Order      `json:"orders"`
	Memberships []Membership `json:"memberships"`
}

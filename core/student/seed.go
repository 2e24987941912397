package student

import "time"

// SeedRoster returns the division-A master roster used to initialize an
// empty registry. Seeded records carry identity and contact details only;
// attendance, CGPA and marks arrive later through teacher uploads.
func SeedRoster() []Student {
	now := time.Now().UTC()
	roster := []Student{
		{PRN: "PRN2401001", Name: "Prerna Shirsath", Division: "A", Email: "prerna.shirsath@student.edu", Phone: "9561434774"},
		{PRN: "PRN2401002", Name: "Shravni Morkhade", Division: "A", Email: "shravni.morkhade@student.edu", Phone: "8788626243"},
		{PRN: "PRN2401003", Name: "Aarav Kumar", Division: "A", Email: "aarav.kumar@student.edu", Phone: "9876543210"},
		{PRN: "PRN2401004", Name: "Neha Singh", Division: "A", Email: "neha.singh@student.edu", Phone: "9765432109"},
		{PRN: "PRN2401005", Name: "Rohan Patel", Division: "A", Email: "rohan.patel@student.edu", Phone: "9654321098"},
		{PRN: "PRN2401006", Name: "Anjali Verma", Division: "A", Email: "anjali.verma@student.edu", Phone: "9543210987"},
		{PRN: "PRN2401007", Name: "Vikram Desai", Division: "A", Email: "vikram.desai@student.edu", Phone: "9432109876"},
		{PRN: "PRN2401008", Name: "Pooja Nair", Division: "A", Email: "pooja.nair@student.edu", Phone: "9321098765"},
		{PRN: "PRN2401009", Name: "Sanjay Iyer", Division: "A", Email: "sanjay.iyer@student.edu", Phone: "9210987654"},
		{PRN: "PRN2401010", Name: "Divya Gupta", Division: "A", Email: "divya.gupta@student.edu", Phone: "9109876543"},
		{PRN: "PRN2401011", Name: "Rahul Sharma", Division: "A", Email: "rahul.sharma@student.edu", Phone: "9098765432"},
		{PRN: "PRN2401012", Name: "Kavya Reddy", Division: "A", Email: "kavya.reddy@student.edu", Phone: "8987654321"},
		{PRN: "PRN2401013", Name: "Arjun Mehta", Division: "A", Email: "arjun.mehta@student.edu", Phone: "8876543210"},
		{PRN: "PRN2401014", Name: "Sneha Joshi", Division: "A", Email: "sneha.joshi@student.edu", Phone: "8765432109"},
		{PRN: "PRN2401015", Name: "Karan Singh", Division: "A", Email: "karan.singh@student.edu", Phone: "8654321098"},
	}
	for i := range roster {
		roster[i].CreatedAt = now
		roster[i].UpdatedAt = now
	}
	return roster
}

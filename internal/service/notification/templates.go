package notification

const receiptSubject = "Your EVmarket purchase is complete"

const receiptHTML = `<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: sans-serif; color: #333; max-width: 600px; margin: 0 auto;">
    <h2 style="color: #16a34a;">Thank you for your purchase</h2>
    <p>Hi {{.BuyerName}},</p>
    <p>Your payment for <strong>{{.Title}}</strong> has been completed.</p>
    <table style="border-collapse: collapse;">
        <tr><td style="padding: 4px 12px 4px 0;">Order</td><td>{{.TransactionID}}</td></tr>
        <tr><td style="padding: 4px 12px 4px 0;">Amount</td><td>{{.Amount}}</td></tr>
        <tr><td style="padding: 4px 12px 4px 0;">Paid with</td><td>{{.Method}}</td></tr>
        <tr><td style="padding: 4px 12px 4px 0;">Date</td><td>{{.Date}}</td></tr>
    </table>
    <p>You can follow the order in your purchase history in the EVmarket app.</p>
    <p style="font-size: 12px; color: #6b7280;">EVmarket</p>
</body>
</html>`

const receiptText = `Hi {{.BuyerName}},

Your payment for {{.Title}} has been completed.

Order:     {{.TransactionID}}
Amount:    {{.Amount}}
Paid with: {{.Method}}
Date:      {{.Date}}

You can follow the order in your purchase history in the EVmarket app.
`
